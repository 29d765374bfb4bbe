package report

// Metadata is the document information dictionary written into the rendered
// file. It only travels through the API payload.
type Metadata struct {
	Title                string
	Author               string
	Subject              string
	Keywords             string
	Application          string
	Creator              string
	DisplayMetadataTitle bool
}

const (
	requestMetadata             = "metadata"
	requestTitle                = "title"
	requestAuthor               = "author"
	requestSubject              = "subject"
	requestKeywords             = "keywords"
	requestApplication          = "application"
	requestCreator              = "creator"
	requestDisplayMetadataTitle = "displayMetadataTitle"
)

// FillRequest adds the non-empty fields under "metadata".
// displayMetadataTitle is always present.
func (m *Metadata) FillRequest(payload map[string]any) {
	out := map[string]any{requestDisplayMetadataTitle: m.DisplayMetadataTitle}
	for key, value := range map[string]string{
		requestTitle:       m.Title,
		requestAuthor:      m.Author,
		requestSubject:     m.Subject,
		requestKeywords:    m.Keywords,
		requestApplication: m.Application,
		requestCreator:     m.Creator,
	} {
		if value != "" {
			out[key] = value
		}
	}
	payload[requestMetadata] = out
}
