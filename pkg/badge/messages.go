package badge

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// message keys, english text doubles as the fallback
const (
	msgEnterAPIKey = "Enter your WaniKani API key in the options"
	msgNextReview  = "Next review at %s"
	msgReviewsNow  = "%d reviews available now"
	msgLessonsNow  = "%d lessons available now"
)

// supported languages, first one is the default
var supported = []language.Tag{language.English, language.German}

var matcher = language.NewMatcher(supported)

// dateLayouts are per-language layouts for the next review instant
var dateLayouts = map[language.Tag]string{
	language.English: "Jan 2, 2006, 3:04 PM",
	language.German:  "02.01.2006, 15:04",
}

func init() {
	set := func(tag language.Tag, key string, msg ...any) {
		var err error
		if len(msg) == 1 {
			err = message.SetString(tag, key, msg[0].(string))
		} else {
			err = message.Set(tag, key, plural.Selectf(1, "%d", msg...))
		}
		if err != nil {
			panic(err)
		}
	}

	set(language.English, msgEnterAPIKey, msgEnterAPIKey)
	set(language.English, msgNextReview, msgNextReview)
	set(language.English, msgReviewsNow, "=1", "%d review available now", "other", msgReviewsNow)
	set(language.English, msgLessonsNow, "=1", "%d lesson available now", "other", msgLessonsNow)

	set(language.German, msgEnterAPIKey, "Gib deinen WaniKani API-Schlüssel in den Optionen ein")
	set(language.German, msgNextReview, "Nächste Wiederholung um %s")
	set(language.German, msgReviewsNow, "=1", "%d Wiederholung jetzt verfügbar", "other", "%d Wiederholungen jetzt verfügbar")
	set(language.German, msgLessonsNow, "=1", "%d Lektion jetzt verfügbar", "other", "%d Lektionen jetzt verfügbar")
}

// matchLanguage returns the supported tag closest to lang, english if nothing matches
func matchLanguage(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return supported[0]
	}
	_, idx, _ := matcher.Match(tag)
	return supported[idx]
}
