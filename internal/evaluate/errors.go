package evaluate

import "errors"

// ErrExternalService marks a failure of an outside dependency (STT, LLM,
// embeddings). The HTTP layer maps it to 502 while decode failures stay
// client errors.
var ErrExternalService = errors.New("evaluate: external service failed")

// ErrNoAudio is returned when the request carries no audio bytes.
var ErrNoAudio = errors.New("evaluate: no audio supplied")
