// Package i18n holds the site's UI strings and date formats for the
// supported locales.
package i18n

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. The English text doubles as the fallback translation.
const (
	KeyLoadMore      = "Load more posts"
	KeyExitPreview   = "Exit preview mode"
	KeyReadingTime   = "%d min"
	KeyEdited        = "* edited on %s, at %s"
	KeyPrevious      = "Previous post"
	KeyNext          = "Next post"
	KeyLoading       = "Loading..."
	KeyNotFound      = "Post not found"
	KeyNotFoundBody  = "The post you are looking for does not exist or was removed."
	KeyServerError   = "Something went wrong"
	KeyServerErrBody = "We could not load this page. Please try again later."
	KeyBackHome      = "Back to posts"
	KeyPostsTitle    = "Posts"
	KeyComments      = "Comments"
)

var (
	English    = language.AmericanEnglish
	Portuguese = language.BrazilianPortuguese
)

var supported = []language.Tag{Portuguese, English}

var matcher = language.NewMatcher(supported)

var translations = map[language.Tag]map[string]string{
	Portuguese: {
		KeyLoadMore:      "Carregar mais posts",
		KeyExitPreview:   "Sair do modo Preview",
		KeyReadingTime:   "%d min",
		KeyEdited:        "* editado em %s, às %s",
		KeyPrevious:      "Post anterior",
		KeyNext:          "Próximo post",
		KeyLoading:       "Carregando...",
		KeyNotFound:      "Post não encontrado",
		KeyNotFoundBody:  "O post que você procura não existe ou foi removido.",
		KeyServerError:   "Algo deu errado",
		KeyServerErrBody: "Não foi possível carregar esta página. Tente novamente mais tarde.",
		KeyBackHome:      "Voltar para os posts",
		KeyPostsTitle:    "Posts",
		KeyComments:      "Comentários",
	},
}

var shortMonths = map[language.Base][12]string{
	mustBase(Portuguese): {"jan", "fev", "mar", "abr", "mai", "jun", "jul", "ago", "set", "out", "nov", "dez"},
	mustBase(English):    {"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"},
}

var builder = newBuilder()

func newBuilder() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Sprintf("i18n: set %s %q: %v", tag, key, err))
			}
		}
	}
	return b
}

func mustBase(tag language.Tag) language.Base {
	base, _ := tag.Base()
	return base
}

// Match returns the supported tag closest to locale, defaulting to pt-BR.
func Match(locale string) language.Tag {
	tag, err := language.Parse(locale)
	if err != nil {
		return Portuguese
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return Portuguese
	}
	return supported[idx]
}

// Localizer formats strings and dates for one locale and time zone.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
	loc     *time.Location
}

// New returns a Localizer for locale, rendering times in loc (UTC if nil).
func New(locale string, loc *time.Location) *Localizer {
	tag := Match(locale)
	if loc == nil {
		loc = time.UTC
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(builder)),
		loc:     loc,
	}
}

// Tag returns the selected language tag.
func (l *Localizer) Tag() language.Tag {
	return l.tag
}

// T translates key, formatting args into it.
func (l *Localizer) T(key string, args ...any) string {
	return l.printer.Sprintf(key, args...)
}

// Date formats t as "dd MMM yyyy", e.g. "25 mar 2021". A nil time yields "".
func (l *Localizer) Date(t *time.Time) string {
	if t == nil {
		return ""
	}
	lt := t.In(l.loc)
	months, ok := shortMonths[mustBase(l.tag)]
	if !ok {
		months = shortMonths[mustBase(English)]
	}
	return fmt.Sprintf("%02d %s %d", lt.Day(), months[lt.Month()-1], lt.Year())
}

// Clock formats the time of day of t as HH:mm.
func (l *Localizer) Clock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(l.loc).Format("15:04")
}
