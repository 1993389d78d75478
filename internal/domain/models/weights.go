package models

// WeightProfile holds per-dimension importance on a 0..100 scale.
// The four weights are independent factors and are not required to sum to 100.
type WeightProfile struct {
	UserID   int64   `gorm:"primaryKey;autoIncrement:false" mapstructure:"-"`
	Salary   float64 `validate:"min=0,max=100" mapstructure:"salary"`
	WorkLife float64 `validate:"min=0,max=100" mapstructure:"work_life"`
	Growth   float64 `validate:"min=0,max=100" mapstructure:"growth"`
	Culture  float64 `validate:"min=0,max=100" mapstructure:"culture"`
}

const WeightStep = 5

func DefaultWeights() WeightProfile {
	return WeightProfile{Salary: 40, WorkLife: 25, Growth: 20, Culture: 15}
}

func (w WeightProfile) Validate() error {
	return validate.Struct(w)
}
