package blog

import (
	"encoding/json"

	"github.com/pejamp/spacetraveling/prismic"
)

// ProjectSummaries maps a query response to listing entries in result order
// and forwards its next-page cursor. Documents are not validated.
func ProjectSummaries(resp *prismic.Response) ([]PostSummary, string) {
	if resp == nil {
		return nil, ""
	}
	posts := make([]PostSummary, 0, len(resp.Results))
	for _, doc := range resp.Results {
		f := decodePostFields(doc.Data)
		posts = append(posts, PostSummary{
			UID:                  doc.UID,
			FirstPublicationDate: timePtr(doc.FirstPublicationDate),
			Title:                f.Title,
			Subtitle:             f.Subtitle,
			Author:               f.Author,
		})
	}
	return posts, resp.Next()
}

// ProjectDetail maps a document to a full article. Sections keep their
// authoring order.
func ProjectDetail(doc *prismic.Document) PostDetail {
	f := decodePostFields(doc.Data)
	sections := make([]Section, 0, len(f.Content))
	for _, c := range f.Content {
		sections = append(sections, Section{Heading: c.Heading, Body: c.Body})
	}
	return PostDetail{
		UID:                  doc.UID,
		FirstPublicationDate: timePtr(doc.FirstPublicationDate),
		LastPublicationDate:  timePtr(doc.LastPublicationDate),
		Title:                f.Title,
		Subtitle:             f.Subtitle,
		BannerURL:            f.Banner.URL,
		BannerAlt:            f.Banner.Alt,
		Author:               f.Author,
		Sections:             sections,
	}
}

// decodePostFields decodes each field on its own. A field that is absent or
// has an unexpected shape stays at its zero value.
func decodePostFields(data json.RawMessage) postFields {
	var f postFields
	fields := rawObject(data)
	decodeField(fields["title"], &f.Title)
	decodeField(fields["subtitle"], &f.Subtitle)
	decodeField(fields["author"], &f.Author)

	banner := rawObject(fields["banner"])
	decodeField(banner["url"], &f.Banner.URL)
	decodeField(banner["alt"], &f.Banner.Alt)

	var content []json.RawMessage
	decodeField(fields["content"], &content)
	for _, raw := range content {
		section := rawObject(raw)
		var s postSection
		decodeField(section["heading"], &s.Heading)
		decodeField(section["body"], &s.Body)
		f.Content = append(f.Content, s)
	}
	return f
}

func rawObject(data json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	decodeField(data, &m)
	return m
}

func decodeField[T any](raw json.RawMessage, dst *T) {
	if len(raw) == 0 {
		return
	}
	var v T
	if json.Unmarshal(raw, &v) == nil {
		*dst = v
	}
}
