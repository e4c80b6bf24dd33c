package student

// Field names as emitted by the backend.
const (
	FieldID       = "Talaba ID"
	FieldName     = "To'liq ismi"
	FieldFaculty  = "Fakultet"
	FieldGroup    = "Guruh"
	FieldCourse   = "Kurs"
	FieldLanguage = "Ta'lim tili"
)

// Placeholders used when a field is missing or empty.
const (
	MissingID      = "N/A"
	MissingName    = "Ism mavjud emas"
	MissingValue   = "---"
	MissingPrinted = "Mavjud emas"
	UnknownStudent = "Noma'lum talaba"
)

// Category is a static group of fields shown together in the detail view.
type Category struct {
	Key    string
	Title  string
	Icon   string
	Fields []string
}

// Categories lists detail groups in display order.
var Categories = []Category{
	{
		Key:   "personal",
		Title: "Shaxsiy Ma'lumotlar",
		Icon:  "fas fa-id-card",
		Fields: []string{
			FieldID, FieldName, "Fuqarolik", "Davlat", "Millat", "Viloyat",
			"Tuman", "Jins", "Tug'ilgan sana", "Pasport raqami",
			"JSHSHIR-kod", "Pasport berilgan sana",
		},
	},
	{
		Key:   "education",
		Title: "Ta'lim Ma'lumotlari",
		Icon:  "fas fa-graduation-cap",
		Fields: []string{
			FieldCourse, FieldFaculty, FieldGroup, FieldLanguage, "O'quv yili",
			"Semestr", "Bitiruvchi", "Mutaxassislik", "Ta'lim turi",
			"Ta'lim shakli",
		},
	},
	{
		Key:    "financial",
		Title:  "Moliya va Grant",
		Icon:   "fas fa-money-check-alt",
		Fields: []string{"To'lov shakli", "Grant turi"},
	},
	{
		Key:    "background",
		Title:  "Oldingi Ta'lim",
		Icon:   "fas fa-history",
		Fields: []string{"Avvalgi ta'lim ma'lumoti", "Talaba toifasi"},
	},
	{
		Key:   "social",
		Title: "Ijtimoiy Ma'lumotlar",
		Icon:  "fas fa-users",
		Fields: []string{
			"Ijtimoiy toifa", "Birga yashaydiganlar soni",
			"Birga yashaydiganlar toifasi", "Yashash joyi statusi",
			"Yashash joyi geolokatsiyasi",
		},
	},
	{
		Key:    "administrative",
		Title:  "Ma'muriy Ma'lumotlar",
		Icon:   "fas fa-file-contract",
		Fields: []string{"Buyruq"},
	},
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
