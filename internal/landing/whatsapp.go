package landing

import (
	"net/url"
	"strings"
)

// DefaultWhatsAppMessage is the pre-filled consultation message.
const DefaultWhatsAppMessage = "Hola, estoy interesado en el servicio de visa para Serbia. ¿Me pueden dar más información?"

// BuildWhatsAppURL builds a wa.me deep link for the given phone and
// message. wa.me wants the number in international format without the
// leading plus or separators; the message is percent-encoded.
func BuildWhatsAppURL(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)

	u := url.URL{
		Scheme: "https",
		Host:   "wa.me",
		Path:   "/" + digits,
	}
	q := url.Values{}
	q.Set("text", message)
	u.RawQuery = q.Encode()
	return u.String()
}
