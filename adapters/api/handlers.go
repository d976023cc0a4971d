package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"climindex/adapters/specfile"
	"climindex/app"
	"climindex/domain/core"
	"climindex/domain/grid"
	"climindex/domain/indice"
	"climindex/internal/errors"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var doc specfile.Document
	if err := decodeBody(w, r, &doc); err != nil {
		s.writeError(w, err)
		return
	}
	def, err := doc.Definition()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.service.Validate(def.Spec, def.Variables, def.TimeRange); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Variables: doc.Variables})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var doc specfile.Document
	if err := decodeBody(w, r, &doc); err != nil {
		s.writeError(w, err)
		return
	}
	def, err := doc.Definition()
	if err != nil {
		s.writeError(w, err)
		return
	}
	resolved, err := s.service.Resolve(def.Spec, def.Variables, def.TimeRange, def.OutUnit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resolved)
}

func (s *Server) handleCompute(w http.ResponseWriter, r *http.Request) {
	var body ComputeBody
	if err := decodeBody(w, r, &body); err != nil {
		s.writeError(w, err)
		return
	}
	req, err := body.request()
	if err != nil {
		s.writeError(w, err)
		return
	}

	comp, err := s.service.Compute(r.Context(), req)
	if err != nil {
		if ctxErr := r.Context().Err(); ctxErr != nil {
			err = errors.WithCode(errors.CodeTimeout, ctxErr)
		}
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, comp)
}

// request converts the wire body into a service request.
func (b ComputeBody) request() (app.ComputeRequest, error) {
	def, err := b.Definition()
	if err != nil {
		return app.ComputeRequest{}, err
	}

	arrays := make(map[core.VariableKey]grid.Grid, len(b.Arrays))
	for name, data := range b.Arrays {
		g := grid.Grid{Data: data}
		if err := g.Validate(); err != nil {
			return app.ComputeRequest{}, fmt.Errorf("array %s: %w", name, err)
		}
		arrays[core.VariableKey(name)] = g
	}

	axis := make([]time.Time, len(b.TimeAxis))
	for i, s := range b.TimeAxis {
		ts, err := parseTimestamp(s)
		if err != nil {
			return app.ComputeRequest{}, errors.InvalidInput(fmt.Sprintf("time_axis[%d]: %v", i, err))
		}
		axis[i] = ts
	}
	if len(axis) == 0 {
		axis = nil
	}

	return app.ComputeRequest{
		Spec:      def.Spec,
		Variables: def.Variables,
		TimeRange: def.TimeRange,
		OutUnit:   def.OutUnit,
		Arrays:    arrays,
		TimeAxis:  axis,
		FillValue: b.FillValue,
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(time.DateOnly, s); err == nil {
		return ts, nil
	}
	return time.Parse(time.RFC3339, s)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return errors.InvalidInput(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("[API] failed to encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	resp := ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)}

	var verr *indice.ValidationError
	if stderrors.As(err, &verr) {
		resp.Params = verr.Params
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("[API] %s: %v", resp.Code, err)
	} else {
		s.logger.Debug("[API] rejected request (%d %s): %v", status, resp.Code, err)
	}
	s.writeJSON(w, status, resp)
}
