package api

import "net/http"

// RequestPasswordReset handles POST /resets/password.
func (a *API) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[EmailRequest](w, r)
	if !ok {
		return
	}
	if err := a.svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ConsumePasswordReset handles PUT /resets/password.
func (a *API) ConsumePasswordReset(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[ConsumeResetRequest](w, r)
	if !ok {
		return
	}
	if err := a.svc.ConsumePasswordReset(r.Context(), req.Token, req.NewSecret); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestPinReset handles POST /resets/pin.
func (a *API) RequestPinReset(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[EmailRequest](w, r)
	if !ok {
		return
	}
	if err := a.svc.RequestPinReset(r.Context(), req.Email); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ConsumePinReset handles PUT /resets/pin.
func (a *API) ConsumePinReset(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[ConsumeResetRequest](w, r)
	if !ok {
		return
	}
	if err := a.svc.ConsumePinReset(r.Context(), req.Token, req.NewSecret); err != nil {
		a.mapError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
