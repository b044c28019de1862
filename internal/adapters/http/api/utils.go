package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/okian/avaliece/internal/domain/filter"
)

// Query parameters understood by the dashboard routes.
const (
	paramRegion     = "crede"
	paramNetwork    = "rede"
	paramStage      = "etapa"
	paramSubject    = "disciplina"
	paramSearch     = "q"
	paramAssessment = "avaliacao"
)

func selectionFromQuery(q url.Values) filter.Selection {
	return filter.Selection{
		Region:  q.Get(paramRegion),
		Network: q.Get(paramNetwork),
		Stage:   q.Get(paramStage),
		Subject: q.Get(paramSubject),
		Search:  q.Get(paramSearch),
	}
}

// selectionQuery encodes the non-empty parts of sel.
func selectionQuery(sel filter.Selection) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if !filter.IsAll(v) {
			q.Set(k, v)
		}
	}
	set(paramRegion, sel.Region)
	set(paramNetwork, sel.Network)
	set(paramStage, sel.Stage)
	set(paramSubject, sel.Subject)
	set(paramSearch, sel.Search)
	return q
}

// cookieSettings describes the session cookie.
type cookieSettings struct {
	name   string
	secure bool
	ttl    time.Duration
}

func (c cookieSettings) issue(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    id,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c cookieSettings) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c cookieSettings) read(r *http.Request) string {
	ck, err := r.Cookie(c.name)
	if err != nil {
		return ""
	}
	return ck.Value
}
