package storage

import (
	"time"

	"github.com/incontrol-io/incontrol/util"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Trip is a single recorded journey
type Trip struct {
	ID           uint64 `gorm:"primaryKey"`
	TripID       int64  `gorm:"uniqueIndex"`
	Vin          string `gorm:"index"`
	StartTime    time.Time
	EndTime      time.Time
	Distance     float64
	AverageSpeed float64
	FuelConsumed float64
}

var db *gorm.DB

// Open opens the trip database and runs migrations
func Open(path string) error {
	instance, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return err
	}
	db = instance

	db.Logger = &adapter{log: util.NewLogger("sqlite")}

	return db.AutoMigrate(&Trip{})
}

// Enabled returns true once the database has been opened
func Enabled() bool {
	return db != nil
}

// Store persists a trip, ignoring journeys already recorded
func Store(trip *Trip) error {
	tx := db.Where(Trip{TripID: trip.TripID}).FirstOrCreate(trip)
	return tx.Error
}

// LastTrip returns the most recent stored trip for the vehicle
func LastTrip(vin string) (*Trip, error) {
	var trip Trip
	tx := db.Where(Trip{Vin: vin}).Order("start_time desc").First(&trip)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &trip, nil
}

// Trips returns up to count stored trips for the vehicle, newest first
func Trips(vin string, count int) ([]Trip, error) {
	var trips []Trip
	tx := db.Where(Trip{Vin: vin}).Order("start_time desc").Limit(count).Find(&trips)
	return trips, tx.Error
}
