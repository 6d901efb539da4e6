// Package api is the HTTP client for the debate backend.
//
// [Client] implements debate.Backend over the REST/JSON routes under
// /api/debates/assignments/{id}. Every request carries the bearer token and
// a fresh X-Request-ID. Non-2xx responses become *errors.APIError; a post
// held for moderation becomes errors.ErrContentFlagged.
//
// Responses are decoded generically and normalized into the debate package's
// types. Both snake_case and camelCase keys are accepted, and the flat
// debate_N_position / debate_N_score fields are folded into slices indexed by
// debate number. Missing arrays become empty and non-numeric numbers become
// zero; an unknown nextAction is rejected with errors.ErrMalformedProgress.
package api
