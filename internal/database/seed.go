package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/gorm"
)

var seedVenues = []model.Venue{
	{Name: "UA Hotel", Capacity: 250},
	{Name: "UA Conference Room", Capacity: 100},
	{Name: "UA Cafe Maria", Capacity: 70},
	{Name: "UA Facade", Capacity: 20},
	{Name: "UA Chapel", Capacity: 500},
	{Name: "Swimming Pool", Capacity: 30},
	{Name: "Social Hall", Capacity: 100},
	{Name: "Multi-Purpose Room", Capacity: 300},
	{Name: "Gymnasium", Capacity: 4000},
}

var seedOrganizations = []model.Organization{
	{Name: "Architecture Association of Assumption", Logo: "organizations-logo/AAA.jpg", AdminName: "AAA"},
	{Name: "Business Administration College Council", Logo: "organizations-logo/BACC.jpg", AdminName: "BACC"},
	{Name: "Bachelor in Human Services - Peer Helpers Society", Logo: "organizations-logo/BHSPHS.jpg", AdminName: "BHSPHS"},
	{Name: "Citizen's Drug Watch", Logo: "organizations-logo/CDW.jpg", AdminName: "CDW"},
	{Name: "College of Hotel and Restaurant Management", Logo: "organizations-logo/CHARMS.jpg", AdminName: "CHARMS"},
	{Name: "College Representatives of Engineering and Architecture Towards Excellence", Logo: "organizations-logo/CREATE.jpg", AdminName: "CREATE"},
	{Name: "College Red Cross Youth Council", Logo: "organizations-logo/CRYCYC.jpg", AdminName: "CRCYC"},
}

// Seed inserts the venue and organization directories if they are empty.
// Safe to call on every startup.
func Seed(db *gorm.DB) error {
	var venueCount int64
	if err := db.Model(&model.Venue{}).Count(&venueCount).Error; err != nil {
		return err
	}
	if venueCount == 0 {
		if err := db.Create(&seedVenues).Error; err != nil {
			return err
		}
		log.Printf("Seeded %d venues", len(seedVenues))
	}

	var orgCount int64
	if err := db.Model(&model.Organization{}).Count(&orgCount).Error; err != nil {
		return err
	}
	if orgCount == 0 {
		if err := db.Create(&seedOrganizations).Error; err != nil {
			return err
		}
		log.Printf("Seeded %d organizations", len(seedOrganizations))
	}

	return nil
}
