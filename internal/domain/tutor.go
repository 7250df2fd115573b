package domain

type Tutor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Photo string `json:"photo"`
	Bio   string `json:"bio"`
}

const (
	DefaultTutorPhoto = "/tutores/default.jpg"
	DefaultTutorBio   = "Tutor/a de Lumina."
)
