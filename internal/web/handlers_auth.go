package web

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/zmb3/spotify/v2"

	"github.com/ototana/ototana/internal/db"
)

const (
	stateCookieName = "oauth_state"
	nextCookieName  = "oauth_next"

	usernameMinLen = 3
	usernameMaxLen = 20
)

// Login initiates the Spotify OAuth flow (GET /auth/login).
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	state, err := generateOAuthState()
	if err != nil {
		http.Error(w, "failed to generate state", http.StatusInternalServerError)
		return
	}

	// Store state in a cookie for validation on callback
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   300, // 5 minutes
	})

	// Remember where to land after the callback
	if next := r.URL.Query().Get("next"); next != "" && strings.HasPrefix(next, "/") {
		http.SetCookie(w, &http.Cookie{
			Name:     nextCookieName,
			Value:    next,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   300,
		})
	}

	http.Redirect(w, r, h.auth.AuthURL(state), http.StatusTemporaryRedirect)
}

// Callback handles the OAuth callback from Spotify (GET /auth/callback).
// On success it provisions the user's profile row, creates a session and
// redirects to the remembered destination. Any failure redirects to the
// login page with an error flag so the client can force a fresh Spotify
// authorization.
func (h *Handlers) Callback(w http.ResponseWriter, r *http.Request) {
	next := "/"
	if cookie, err := r.Cookie(nextCookieName); err == nil && strings.HasPrefix(cookie.Value, "/") {
		next = cookie.Value
	}
	expireCookie(w, nextCookieName)

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" {
		h.failLogin(w, r, "missing state cookie")
		return
	}
	expireCookie(w, stateCookieName)

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		h.failLogin(w, r, "spotify returned "+errMsg)
		return
	}

	token, err := h.auth.Token(r.Context(), stateCookie.Value, r)
	if err != nil {
		h.failLogin(w, r, "token exchange failed")
		return
	}

	client := spotify.New(h.auth.Client(r.Context(), token))
	me, err := client.CurrentUser(r.Context())
	if err != nil {
		h.failLogin(w, r, "fetching current user failed")
		return
	}

	avatar := firstProfileImage(me)
	displayName := me.DisplayName
	if displayName == "" {
		displayName = string(me.ID)
	}
	user := &db.User{
		ID:          string(me.ID),
		Username:    deriveUsername(string(me.ID)),
		DisplayName: displayName,
		AvatarURL:   avatar,
		IsPublic:    true,
	}

	created, err := h.profiles.Upsert(r.Context(), user)
	if err != nil {
		h.logger.Error("provisioning profile", "user", user.ID, "err", err)
		h.failLogin(w, r, "profile provisioning failed")
		return
	}

	session, err := h.sessions.Create(r.Context(), token, user)
	if err != nil {
		h.logger.Error("creating session", "user", user.ID, "err", err)
		h.failLogin(w, r, "session creation failed")
		return
	}
	h.sessions.SetCookie(w, session)

	sep := "?"
	if strings.Contains(next, "?") {
		sep = "&"
	}
	dest := next + sep + "auth_success=true&new_user=" + strconv.FormatBool(created)
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

// Logout deletes the session and clears the cookie (POST /auth/logout).
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := h.sessions.GetFromRequest(r); session != nil {
		h.sessions.Delete(r.Context(), session.ID)
	}
	h.sessions.ClearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) failLogin(w http.ResponseWriter, r *http.Request, reason string) {
	h.logger.Warn("login failed", "reason", reason)
	dest := "/login?" + url.Values{
		"error":                {"auth_failed"},
		"force_spotify_reauth": {"true"},
	}.Encode()
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

// deriveUsername builds a 3-20 character username from a Spotify user ID,
// keeping only letters, digits and underscores. Short IDs are padded to
// the minimum. IDs over the cap keep a prefix plus a digest of the full
// ID, so two IDs sharing a long prefix still derive distinct usernames.
func deriveUsername(spotifyID string) string {
	var b strings.Builder
	for _, r := range spotifyID {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	name := b.String()
	if len(name) > usernameMaxLen {
		sum := fnv.New32a()
		sum.Write([]byte(spotifyID))
		suffix := fmt.Sprintf("_%06x", sum.Sum32()&0xffffff)
		name = truncateRunes(name, usernameMaxLen-len(suffix)) + suffix
	}
	for len(name) < usernameMinLen {
		name += "_"
	}
	return name
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	for len(s) > max {
		_, size := utf8.DecodeLastRuneInString(s)
		s = s[:len(s)-size]
	}
	return s
}

func firstProfileImage(me *spotify.PrivateUser) *string {
	if len(me.Images) == 0 || me.Images[0].URL == "" {
		return nil
	}
	u := me.Images[0].URL
	return &u
}

func expireCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// generateOAuthState creates a random state string for OAuth.
func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
