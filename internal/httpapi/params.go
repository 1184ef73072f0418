package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/MimeLyc/checkmp/internal/media"
)

type paramError struct {
	name  string
	value string
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.name, e.value)
}

func queryInt(r *http.Request, name string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{name: name, value: raw}
	}
	return v, nil
}

func queryIntPtr(r *http.Request, name string) (*int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &v, nil
}

func queryFloatPtr(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &paramError{name: name, value: raw}
	}
	return &v, nil
}

// pathKind maps the {kind} route variable ("tv" or "movie") to a media kind.
func pathKind(r *http.Request) media.Kind {
	if mux.Vars(r)["kind"] == "movie" {
		return media.KindMovie
	}
	return media.KindSeries
}

func pathID(r *http.Request) (int, error) {
	raw := mux.Vars(r)["id"]
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, &paramError{name: "id", value: raw}
	}
	return v, nil
}
