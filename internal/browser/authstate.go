package browser

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// AuthState is a persisted browser storage state as written by common
// browser-automation tools after a login: cookies plus localStorage entries
// per origin.
type AuthState struct {
	Cookies []Cookie      `json:"cookies"`
	Origins []OriginState `json:"origins"`
}

// Cookie is one stored cookie.
type Cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`

	// Expires is seconds since the epoch; -1 marks a session cookie.
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`

	// SameSite is "Strict", "Lax", or "None".
	SameSite string `json:"sameSite"`
}

// OriginState holds the localStorage of one origin.
type OriginState struct {
	Origin       string         `json:"origin"`
	LocalStorage []StorageEntry `json:"localStorage"`
}

// StorageEntry is one localStorage key/value pair.
type StorageEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadAuthState reads a storage state file.
func LoadAuthState(path string) (*AuthState, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by the user
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthState, err)
	}
	return ParseAuthState(data)
}

// ParseAuthState decodes a storage state document.
func ParseAuthState(data []byte) (*AuthState, error) {
	var state AuthState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthState, err)
	}
	for i, c := range state.Cookies {
		if c.Name == "" || c.Domain == "" {
			return nil, fmt.Errorf("%w: cookie %d has no name or domain", ErrAuthState, i)
		}
	}
	return &state, nil
}

// cookieParams converts stored cookies to CDP parameters.
func cookieParams(state *AuthState) []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(state.Cookies))
	for _, c := range state.Cookies {
		param := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
		}
		if param.Path == "" {
			param.Path = "/"
		}
		if c.Expires > 0 {
			param.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		switch strings.ToLower(c.SameSite) {
		case "strict":
			param.SameSite = proto.NetworkCookieSameSiteStrict
		case "lax":
			param.SameSite = proto.NetworkCookieSameSiteLax
		case "none":
			param.SameSite = proto.NetworkCookieSameSiteNone
		}
		params = append(params, param)
	}
	return params
}

// storagePairs returns the localStorage entries of o as [name, value] pairs
// suitable for a script argument.
func storagePairs(o OriginState) [][2]string {
	pairs := make([][2]string, 0, len(o.LocalStorage))
	for _, e := range o.LocalStorage {
		pairs = append(pairs, [2]string{e.Name, e.Value})
	}
	return pairs
}
