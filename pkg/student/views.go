package student

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Card is the summary shown for one search result.
type Card struct {
	Key      string
	ID       string
	Name     string
	Faculty  string
	Group    string
	Course   string
	Language string
	Status   string
}

// Href is the detail link for the card.
func (c Card) Href() string {
	return "/students/" + url.PathEscape(c.Key)
}

// PrintHref is the printable profile link for the card.
func (c Card) PrintHref() string {
	return c.Href() + "/print"
}

// LookupKey returns the stable key used to find the record at index within
// records: its identifier when no other record shares it, or "#<index>".
// Identifiers starting with "#" always fall back to the positional key.
func LookupKey(records []Record, index int) string {
	id, ok := records[index].ID()
	if ok && !strings.HasPrefix(id, "#") && idCount(records, id) == 1 {
		return id
	}
	return fmt.Sprintf("#%d", index)
}

// Find returns the record whose LookupKey within records is key.
func Find(records []Record, key string) (Record, int, bool) {
	if strings.HasPrefix(key, "#") {
		idx, err := strconv.Atoi(key[1:])
		if err == nil && idx >= 0 && idx < len(records) && LookupKey(records, idx) == key {
			return records[idx], idx, true
		}
		return Record{}, -1, false
	}
	for i, r := range records {
		if id, ok := r.ID(); ok && id == key && LookupKey(records, i) == key {
			return r, i, true
		}
	}
	return Record{}, -1, false
}

func idCount(records []Record, id string) int {
	n := 0
	for _, r := range records {
		if other, ok := r.ID(); ok && other == id {
			n++
		}
	}
	return n
}

// NewCard builds the summary card for the record at index within records.
func NewCard(records []Record, index int) Card {
	r := records[index]
	return Card{
		Key:      LookupKey(records, index),
		ID:       orDefault(r.Get(FieldID), MissingID),
		Name:     orDefault(r.Get(FieldName), MissingName),
		Faculty:  orDefault(r.Get(FieldFaculty), MissingValue),
		Group:    orDefault(r.Get(FieldGroup), MissingValue),
		Course:   orDefault(r.Get(FieldCourse), MissingValue),
		Language: orDefault(r.Get(FieldLanguage), MissingValue),
		Status:   "ACTIVE",
	}
}

// NewCards builds cards in result order.
func NewCards(records []Record) []Card {
	cards := make([]Card, len(records))
	for i := range records {
		cards[i] = NewCard(records, i)
	}
	return cards
}

// Row is one label/value pair.
type Row struct {
	Label string
	Value string
}

// Section is a rendered detail category.
type Section struct {
	Key   string
	Title string
	Icon  string
	Rows  []Row
}

// Detail is the grouped view of a single record.
type Detail struct {
	Key      string
	Title    string
	Sections []Section
}

// PrintHref is the printable profile link for the detail.
func (d Detail) PrintHref() string {
	return "/students/" + url.PathEscape(d.Key) + "/print"
}

// NewDetail groups the record's fields into Categories. Fields absent from
// the record are skipped; present fields with an empty or null value render
// as MissingValue. Every category is emitted, even when it has no rows.
func NewDetail(r Record, key string) Detail {
	d := Detail{
		Key:      key,
		Title:    orDefault(r.Get(FieldName), UnknownStudent),
		Sections: make([]Section, 0, len(Categories)),
	}
	for _, cat := range Categories {
		sec := Section{Key: cat.Key, Title: cat.Title, Icon: cat.Icon}
		for _, f := range cat.Fields {
			if !r.Has(f) {
				continue
			}
			sec.Rows = append(sec.Rows, Row{Label: f, Value: orDefault(r.Get(f), MissingValue)})
		}
		d.Sections = append(d.Sections, sec)
	}
	return d
}

// Section returns the section with the given category key.
func (d Detail) Section(key string) (Section, bool) {
	for _, s := range d.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// Profile is the printable, unfiltered view of a record.
type Profile struct {
	Name string
	Rows []Row
}

// Title is the document title of the printable profile.
func (p Profile) Title() string {
	return p.Name + " - Talaba Profili"
}

// NewProfile lists every field of the record in payload order.
func NewProfile(r Record) Profile {
	p := Profile{Name: orDefault(r.Get(FieldName), UnknownStudent)}
	for _, k := range r.Keys() {
		p.Rows = append(p.Rows, Row{Label: k, Value: orDefault(r.Get(k), MissingPrinted)})
	}
	return p
}
