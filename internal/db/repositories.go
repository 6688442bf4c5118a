package db

import "gorm.io/gorm"

type Repositories struct {
	Reports   *ReportRepository
	Diary     *DiaryRepository
	Reminders *ReminderRepository
	Wards     *WardRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Reports:   NewReportRepository(database),
		Diary:     NewDiaryRepository(database),
		Reminders: NewReminderRepository(database),
		Wards:     NewWardRepository(database),
	}
}
