package dto

// RevealResponse is returned by the seed-reveal endpoint, used by a client
// to independently recompute a spin's RNG outcome after the fact.
type RevealResponse struct {
	SpinID string `json:"spin_id"`
	Seed   string `json:"rng_seed"`
}

// VerifySpinRequest carries the candidate spin payload a client wants
// checked against its sealed hash. The candidate is left loosely typed
// since it is re-marshaled through the same canonical-JSON path the
// server used to seal it.
type VerifySpinRequest struct {
	Candidate interface{} `json:"candidate" validate:"required"`
}

// VerifySpinResponse reports whether the recomputed hash matches the
// sealed validation hash.
type VerifySpinResponse struct {
	SpinID string `json:"spin_id"`
	Valid  bool   `json:"valid"`
}
