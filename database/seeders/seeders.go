package seeders

import (
	"counselkit_go/database"
	"counselkit_go/models"
	"log"
	"time"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedBranches()
	SeedTeams()
	SeedSubjects()
	SeedCounselors()

	log.Println("Database seeding completed successfully!")
}

// SeedBranches seeds the branches table
func SeedBranches() {
	var count int64
	database.DB.Model(&models.Branch{}).Count(&count)
	if count > 0 {
		log.Println("Branches already seeded, skipping...")
		return
	}

	branches := []models.Branch{
		{Code: "KH", Label: "강남본원", Active: true},
		{Code: "ATENZ", Label: "아텐츠", Active: true},
		{Code: "VIDEO", Label: "영상", Active: true},
	}

	for _, branch := range branches {
		if err := database.DB.Create(&branch).Error; err != nil {
			log.Printf("Error seeding branch %s: %v", branch.Code, err)
		}
	}

	log.Println("Branches seeded successfully")
}

// SeedTeams seeds the teams table
func SeedTeams() {
	var count int64
	database.DB.Model(&models.Team{}).Count(&count)
	if count > 0 {
		log.Println("Teams already seeded, skipping...")
		return
	}

	teams := []models.Team{
		{Code: "JONGNO", Label: "종로", Active: true},
		{Code: "DANGSAN", Label: "당산", Active: true},
		{Code: "GANGNAM1", Label: "강남1", Active: true},
		{Code: "GANGNAM2", Label: "강남2", Active: true},
	}

	for _, team := range teams {
		if err := database.DB.Create(&team).Error; err != nil {
			log.Printf("Error seeding team %s: %v", team.Code, err)
		}
	}

	log.Println("Teams seeded successfully")
}

// SeedSubjects seeds the subjects table
func SeedSubjects() {
	var count int64
	database.DB.Model(&models.Subject{}).Count(&count)
	if count > 0 {
		log.Println("Subjects already seeded, skipping...")
		return
	}

	subjects := []models.Subject{
		{Name: "게임기획", BranchCode: "KH", Active: true},
		{Name: "게임아트", BranchCode: "KH", Active: true},
		{Name: "게임프로그래밍", BranchCode: "KH", Active: true},
		{Name: "웹툰", BranchCode: "ATENZ", Active: true},
		{Name: "콘셉트아트", BranchCode: "ATENZ", Active: true},
		{Name: "영상편집", BranchCode: "VIDEO", Active: true},
		{Name: "모션그래픽", BranchCode: "VIDEO", Active: true},
	}

	for _, subject := range subjects {
		if err := database.DB.Create(&subject).Error; err != nil {
			log.Printf("Error seeding subject %s: %v", subject.Name, err)
		}
	}

	log.Println("Subjects seeded successfully")
}

// SeedCounselors seeds the counselors table
func SeedCounselors() {
	var count int64
	database.DB.Model(&models.Counselor{}).Count(&count)
	if count > 0 {
		log.Println("Counselors already seeded, skipping...")
		return
	}

	hired := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	counselors := []models.Counselor{
		{Name: "김민지", BranchCode: "KH", TeamCode: "JONGNO", HiredAt: &hired, Status: models.CounselorActive},
		{Name: "박서준", BranchCode: "KH", TeamCode: "GANGNAM1", HiredAt: &hired, Status: models.CounselorActive},
		{Name: "이하늘", BranchCode: "ATENZ", TeamCode: "DANGSAN", HiredAt: &hired, Status: models.CounselorActive},
		{Name: "최유진", BranchCode: "VIDEO", TeamCode: "GANGNAM2", HiredAt: &hired, Status: models.CounselorActive},
	}

	for _, counselor := range counselors {
		if err := database.DB.Create(&counselor).Error; err != nil {
			log.Printf("Error seeding counselor %s: %v", counselor.Name, err)
		}
	}

	log.Println("Counselors seeded successfully")
}
