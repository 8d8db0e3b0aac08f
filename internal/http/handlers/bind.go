package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/geocoder89/memberhub/internal/http/views"
	"github.com/geocoder89/memberhub/internal/validation"
	"github.com/gin-gonic/gin"
)

var (
	ErrUnsupportedMedia = errors.New("unsupported content type")
	ErrMalformedBody    = errors.New("malformed request body")
)

// ReadPayload decodes a form or JSON body without flattening its shape.
// Bracketed form keys (email[$ne]=x) become nested maps and repeated keys
// become slices, so the validator can see them for what they are.
func ReadPayload(ctx *gin.Context) (validation.Payload, error) {
	mediaType, _, _ := mime.ParseMediaType(ctx.GetHeader("Content-Type"))

	switch mediaType {
	case "application/json":
		return readJSON(ctx.Request.Body)
	case "application/x-www-form-urlencoded", "multipart/form-data", "":
		if err := ctx.Request.ParseMultipartForm(1 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return nil, bodyError(err)
		}
		return payloadFromForm(ctx.Request.PostForm), nil
	default:
		return nil, ErrUnsupportedMedia
	}
}

func readJSON(body io.Reader) (validation.Payload, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, bodyError(err)
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, ErrMalformedBody
	}

	return validation.Payload(obj), nil
}

func payloadFromForm(form url.Values) validation.Payload {
	p := make(validation.Payload, len(form))

	for key, values := range form {
		name, rest, bracketed := strings.Cut(key, "[")
		if bracketed {
			nested, _ := p[name].(map[string]any)
			if nested == nil {
				nested = map[string]any{}
			}
			nested[strings.TrimSuffix(rest, "]")] = formValue(values)
			p[name] = nested
			continue
		}

		// a bracketed variant of the same field takes precedence
		if _, isMap := p[name].(map[string]any); isMap {
			continue
		}
		p[name] = formValue(values)
	}

	return p
}

func formValue(values []string) any {
	if len(values) == 1 {
		return values[0]
	}

	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return errors.Join(ErrMalformedBody, err)
}

// respondBodyError renders the page for a body that could not be read.
func respondBodyError(ctx *gin.Context, err error) {
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &tooLarge):
		views.Error(ctx, http.StatusRequestEntityTooLarge, "The submitted form is too large.")
	case errors.Is(err, ErrUnsupportedMedia):
		views.Error(ctx, http.StatusUnsupportedMediaType, "Unsupported content type.")
	default:
		views.Error(ctx, http.StatusBadRequest, "The submitted form could not be read.")
	}
}

func stringValue(p validation.Payload, key string) string {
	s, _ := p[key].(string)
	return s
}
