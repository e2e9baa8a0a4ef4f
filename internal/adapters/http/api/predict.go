package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/okian/diabetes-predictor/internal/domain/predictor"
	"github.com/okian/diabetes-predictor/pkg/logger"
)

// PredictDependencies defines the interface for prediction.
type PredictDependencies interface {
	Predict(ctx context.Context, req Request) (Result, error)
}

// PredictHandler handles prediction requests.
type PredictHandler struct {
	deps         PredictDependencies
	maxBodyBytes int64
	validate     *validator.Validate
	logger       logger.Logger
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(deps PredictDependencies, maxBodyBytes int64, l logger.Logger) *PredictHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &PredictHandler{
		deps:         deps,
		maxBodyBytes: maxBodyBytes,
		validate:     newValidator(),
		logger:       l,
	}
}

// HandlePredict handles POST /predict requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		h.logger.Debug(r.Context(), "rejected prediction method",
			logger.String("method", r.Method),
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(Wrap(op, ErrMethodNotAllowed)))
		methodNotAllowed(w, http.MethodPost)
		return
	}

	req, err := h.decode(w, r)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if errors.Is(err, ErrBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		h.logger.Debug(r.Context(), "rejected prediction request",
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(Wrap(op, err)))
		writeError(w, status, err.Error())
		return
	}

	res, err := h.deps.Predict(r.Context(), req)
	if err != nil {
		h.logger.Warn(r.Context(), "prediction request failed",
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(Wrap(op, err)))
		writeError(w, http.StatusInternalServerError, failureDetail(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// failureDetail renders the client-facing detail for a prediction error.
func failureDetail(err error) string {
	var perr *predictor.Error
	if !errors.As(err, &perr) {
		return "Internal Server Error"
	}
	switch {
	case errors.Is(perr.Kind, predictor.ErrUnavailable):
		return "Model not loaded: " + perr.Detail
	case errors.Is(perr.Kind, predictor.ErrPredictionFailed):
		return "Prediction failed: " + perr.Detail
	default:
		return perr.Error()
	}
}

// predictRequest is the wire form of Request. Fields are pointers so the
// validator can tell a missing field from a zero value; json.Number accepts
// both JSON numbers and numeric strings.
type predictRequest struct {
	Gender            *json.Number `json:"gender" validate:"required"`
	Hypertension      *json.Number `json:"hypertension" validate:"required"`
	HeartDisease      *json.Number `json:"heart_disease" validate:"required"`
	SmokingHistory    *json.Number `json:"smoking_history" validate:"required"`
	BMI               *json.Number `json:"bmi" validate:"required"`
	HbA1cLevel        *json.Number `json:"HbA1c_level" validate:"required"`
	BloodGlucoseLevel *json.Number `json:"blood_glucose_level" validate:"required"`
	AgeCategory       *json.Number `json:"age_category" validate:"required"`
}

// requestError is a rejected request body. Its message is the
// client-facing detail; it matches its kind with errors.Is.
type requestError struct {
	kind  error
	cause error
}

func (e *requestError) Error() string   { return e.cause.Error() }
func (e *requestError) Unwrap() []error { return []error{e.kind, e.cause} }

func reject(kind, cause error) error {
	return &requestError{kind: kind, cause: cause}
}

// decode reads, validates and coerces the request body. Returned errors
// match ErrBadRequest or ErrBodyTooLarge.
func (h *PredictHandler) decode(w http.ResponseWriter, r *http.Request) (Request, error) {
	var wire predictRequest
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&wire); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return Request{}, reject(ErrBodyTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
		case errors.Is(err, io.EOF):
			return Request{}, reject(ErrBadRequest, errors.New("request body is empty"))
		default:
			return Request{}, reject(ErrBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		}
	}

	if err := h.validate.Struct(wire); err != nil {
		return Request{}, reject(ErrBadRequest, missingFields(err))
	}

	req, err := wire.coerce()
	if err != nil {
		return Request{}, reject(ErrBadRequest, err)
	}
	return req, nil
}

func (p predictRequest) coerce() (Request, error) {
	var (
		req  Request
		errs []string
	)
	ints := []struct {
		name string
		src  *json.Number
		dst  *int
	}{
		{"gender", p.Gender, &req.Gender},
		{"hypertension", p.Hypertension, &req.Hypertension},
		{"heart_disease", p.HeartDisease, &req.HeartDisease},
		{"smoking_history", p.SmokingHistory, &req.SmokingHistory},
		{"age_category", p.AgeCategory, &req.AgeCategory},
	}
	for _, f := range ints {
		v, err := toInt(*f.src)
		if err != nil {
			errs = append(errs, f.name+": "+err.Error())
			continue
		}
		*f.dst = v
	}

	floats := []struct {
		name string
		src  *json.Number
		dst  *float64
	}{
		{"bmi", p.BMI, &req.BMI},
		{"HbA1c_level", p.HbA1cLevel, &req.HbA1cLevel},
		{"blood_glucose_level", p.BloodGlucoseLevel, &req.BloodGlucoseLevel},
	}
	for _, f := range floats {
		v, err := toFloat(*f.src)
		if err != nil {
			errs = append(errs, f.name+": "+err.Error())
			continue
		}
		*f.dst = v
	}

	if len(errs) > 0 {
		return Request{}, errors.New(strings.Join(errs, "; "))
	}
	return req, nil
}

// toInt accepts integers and integral floats such as 1.0 within the
// int32 range.
func toInt(n json.Number) (int, error) {
	invalid := errors.New("value is not a valid integer")
	if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
		if i > math.MaxInt32 || i < math.MinInt32 {
			return 0, invalid
		}
		return int(i), nil
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, invalid
	}
	return int(f), nil
}

func toFloat(n json.Number) (float64, error) {
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("value is not a valid number")
	}
	return f, nil
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// missingFields turns validator errors into a single detail line.
func missingFields(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	names := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		names = append(names, fe.Field())
	}
	return fmt.Errorf("missing required fields: %s", strings.Join(names, ", "))
}
