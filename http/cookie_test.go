package http

import (
	"strings"
	"testing"
	"time"

	"github.com/freekieb7/sockhttp/test"
)

func TestCookieString(t *testing.T) {
	cookie := &Cookie{
		Name:     "test",
		Value:    "value",
		Path:     "/",
		Domain:   "example.com",
		MaxAge:   3600,
		Secure:   true,
		HttpOnly: true,
		SameSite: SameSiteLaxMode,
	}

	expected := "test=value; Path=/; Domain=example.com; Max-Age=3600; Secure; HttpOnly; SameSite=Lax"
	test.Equal(t, expected, cookie.String())

	cookie.Delete()
	test.True(t, strings.HasPrefix(cookie.String(), "test=; Path=/; Domain=example.com; Expires=Thu, 01 Jan 1970 00:00:01 GMT; Max-Age=0"), cookie.String())
}

func TestCookieValid(t *testing.T) {
	test.NoError(t, (&Cookie{Name: "valid", Value: "test"}).Valid())

	test.ErrorIs(t, (&Cookie{Name: "", Value: "test"}).Valid(), ErrInvalidCookie)
	test.ErrorIs(t, (&Cookie{Name: "a;b", Value: "test"}).Valid(), ErrInvalidCookie)
	test.ErrorIs(t, (&Cookie{Name: "big", Value: strings.Repeat("x", maxCookieValue+1)}).Valid(), ErrInvalidCookie)
	test.ErrorIs(t, (&Cookie{Name: "test", SameSite: SameSiteNoneMode}).Valid(), ErrInvalidCookie)
}

func TestCookieIsExpired(t *testing.T) {
	test.True(t, !(&Cookie{Name: "a", Expires: time.Now().Add(time.Hour)}).IsExpired(), "should not be expired")
	test.True(t, (&Cookie{Name: "a", Expires: time.Now().Add(-time.Hour)}).IsExpired(), "should be expired by time")
	test.True(t, (&Cookie{Name: "a", MaxAge: -1}).IsExpired(), "should be expired by MaxAge")

	c := &Cookie{Name: "a"}
	c.SetExpiry(time.Minute)
	test.Equal(t, 60, c.MaxAge)
	test.True(t, !c.IsExpired(), "should not be expired")
}

func TestParseCookies(t *testing.T) {
	cookies := ParseCookies("test=value; other = data ;broken; =nameless;empty=")

	test.Equal(t, 3, len(cookies))
	test.Equal(t, "test", cookies[0].Name)
	test.Equal(t, "value", cookies[0].Value)
	test.Equal(t, "other", cookies[1].Name)
	test.Equal(t, "data", cookies[1].Value)
	test.Equal(t, "empty", cookies[2].Name)
	test.Equal(t, "", cookies[2].Value)
}

func TestRequestCookie(t *testing.T) {
	state, _ := feed([]byte("GET / HTTP/1.1\r\ncookie: test=value; other=data\r\n\r\n"))
	req, _ := state.Request()

	cookie, err := req.Cookie("other")
	test.NoError(t, err)
	test.Equal(t, "data", cookie.Value)

	_, err = req.Cookie("nonexistent")
	test.ErrorIs(t, err, ErrNoCookie)
}

func TestResponseAddCookie(t *testing.T) {
	res := NewResponse(StatusOK, "")
	res.AddCookie(&Cookie{Name: "a", Value: "1", Path: "/"})
	res.AddCookie(&Cookie{Name: "b", Value: "2"})

	wire := res.String()
	test.True(t, strings.Contains(wire, "Set-Cookie: a=1; Path=/\r\nSet-Cookie: b=2\r\n"), wire)
}

func TestResponseAddCookieRejectsInvalidCookie(t *testing.T) {
	res := NewResponse(StatusOK, "")

	test.ErrorIs(t, res.AddCookie(&Cookie{Name: "a;b", Value: "1"}), ErrInvalidCookie)
	test.ErrorIs(t, res.AddCookie(&Cookie{Name: "a", Value: "1", Path: "/\r\nX-Injected: 1"}), ErrInvalidHeaderField)

	_, ok := res.HeaderField("Set-Cookie")
	test.True(t, !ok, "invalid cookie added")
}
