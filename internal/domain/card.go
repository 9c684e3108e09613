package domain

// Card is a single vocabulary flashcard.
type Card struct {
	ID                 string   `json:"id"`
	Category           Category `json:"category"`
	Portuguese         string   `json:"portuguese"`
	English            string   `json:"english"`
	Example            string   `json:"example,omitempty"`
	ExampleTranslation string   `json:"exampleTranslation,omitempty"`
}

// Tense is a verb tense drilled by the conjugation game.
type Tense string

const (
	Present   Tense = "present"
	Preterite Tense = "preterite"
	Imperfect Tense = "imperfect"
	Future    Tense = "future"
)

// Tenses lists every drilled tense.
var Tenses = []Tense{Present, Preterite, Imperfect, Future}

// Person is a grammatical person of a conjugation table.
type Person string

const (
	Eu   Person = "eu"
	Tu   Person = "tu"
	Voce Person = "voce"
	Nos  Person = "nos"
	Vos  Person = "vos"
	Eles Person = "eles"
)

// Persons lists every drilled person.
var Persons = []Person{Eu, Tu, Voce, Nos, Vos, Eles}

// Verb is one entry of the conjugation dataset.
type Verb struct {
	Infinitive   string                      `json:"infinitive" yaml:"infinitive" validate:"required"`
	Translation  string                      `json:"translation" yaml:"translation" validate:"required"`
	Regular      bool                        `json:"regular" yaml:"regular"`
	Group        string                      `json:"group" yaml:"group" validate:"oneof=ar er ir"`
	Conjugations map[Tense]map[Person]string `json:"conjugations" yaml:"conjugations" validate:"required,dive,required,dive,required"`
}

// Conjugate returns the conjugated form for a tense and person.
func (v Verb) Conjugate(t Tense, p Person) (string, bool) {
	forms, ok := v.Conjugations[t]
	if !ok {
		return "", false
	}
	form, ok := forms[p]
	return form, ok
}
