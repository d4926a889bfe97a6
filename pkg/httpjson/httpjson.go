package httpjson

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"lab-backend/internal/apperr"
	"lab-backend/internal/logger"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// ErrorBody is the wire shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Details any    `json:"details,omitempty"`
}

// Message is the body of write confirmations.
type Message struct {
	Message string `json:"message"`
	ID      int    `json:"id,omitempty"`
}

// DecodeJSON reads r's body into dest and runs struct validation.
func DecodeJSON(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(io.LimitReader(r.Body, MaxBodyBytes))
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.CodeValidation, "Corpo da requisição vazio")
		}
		return apperr.Wrap(apperr.CodeValidation, err, "JSON inválido").WithDetails(map[string]any{"error": err.Error()})
	}
	// The body must hold exactly one JSON value.
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return apperr.New(apperr.CodeValidation, "JSON inválido").
			WithDetails(map[string]any{"error": "conteúdo após o objeto JSON"})
	}
	return Validate(dest)
}

// Validate runs the validate tags on v.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *apperr.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		names := make([]string, 0, len(errs))
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
			names = append(names, fieldErr.Field())
		}
		return apperr.New(apperr.CodeValidation, "Campos inválidos: "+strings.Join(names, ", ")).WithDetails(details)
	}
	return apperr.Wrap(apperr.CodeValidation, err, "Dados inválidos")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "obrigatório"
	case "min":
		return fmt.Sprintf("mínimo %s", fe.Param())
	case "max":
		return fmt.Sprintf("máximo %s", fe.Param())
	case "email":
		return "e-mail inválido"
	case "oneof":
		return fmt.Sprintf("deve ser um de: %s", fe.Param())
	case "len":
		return fmt.Sprintf("deve ter %s caracteres", fe.Param())
	}
	return "inválido"
}

// PathInt reads a positive integer route variable.
func PathInt(vars map[string]string, key string) (int, error) {
	raw := vars[key]
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.CodeValidation, "ID inválido").WithDetails(map[string]any{"field": key})
	}
	return id, nil
}

// QueryInt reads an optional integer query parameter.
func QueryInt(r *http.Request, key string, defaultVal int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.New(apperr.CodeValidation, "Parâmetro deve ser numérico").WithDetails(map[string]any{"field": key})
	}
	return v, nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	json.NewEncoder(w).Encode(payload)
}

func WriteMessage(w http.ResponseWriter, status int, message string, id int) {
	WriteJSON(w, status, Message{Message: message, ID: id})
}

// WriteError maps err to its status and body. Internal causes are logged,
// never sent.
func WriteError(ctx context.Context, log *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}
	typed := apperr.As(err)
	if typed == nil {
		typed = apperr.Wrap(apperr.CodeInternal, err, "unexpected error")
	}
	meta := apperr.MetadataFor(typed.Code())

	body := ErrorBody{
		Error: apperr.PublicMessage(typed),
		Code:  string(typed.Code()),
	}
	if meta.DetailsAllowed {
		body.Details = typed.Details()
	}

	if log != nil {
		ctx = log.WithFields(ctx, map[string]any{
			"error_code": string(typed.Code()),
			"status":     meta.HTTPStatus,
		})
		if meta.HTTPStatus >= http.StatusInternalServerError {
			log.Error(ctx, "request.error", err)
		} else {
			log.Debug(ctx, "request.rejected: "+err.Error())
		}
	}

	WriteJSON(w, meta.HTTPStatus, body)
}
