package model

// swagger:model Course
type Course struct {
	BaseModel
	Title string `gorm:"size:255;not null" json:"title"`
	Code  string `gorm:"size:50;index" json:"code"`
}

func (Course) TableName() string {
	return "courses"
}
