package ledger

import "time"

// SeedResources returns the default inventory used when no snapshot exists.
func SeedResources(now time.Time) []Resource {
	return []Resource{
		{
			ID:            "1",
			Name:          "Drinking water",
			CurrentAmount: 850,
			MaxCapacity:   1200,
			Unit:          "liters",
			CriticalLevel: 200,
			WarningLevel:  400,
			LastUpdated:   now,
			Category:      CategoryWater,
		},
		{
			ID:            "2",
			Name:          "Food rations",
			CurrentAmount: 320,
			MaxCapacity:   500,
			Unit:          "units",
			CriticalLevel: 50,
			WarningLevel:  100,
			LastUpdated:   now,
			Category:      CategoryFood,
		},
		{
			ID:            "3",
			Name:          "Essential medicine",
			CurrentAmount: 75,
			MaxCapacity:   200,
			Unit:          "doses",
			CriticalLevel: 20,
			WarningLevel:  50,
			LastUpdated:   now,
			Category:      CategoryMedicine,
		},
		{
			ID:            "4",
			Name:          "Fuel",
			CurrentAmount: 180,
			MaxCapacity:   400,
			Unit:          "liters",
			CriticalLevel: 40,
			WarningLevel:  80,
			LastUpdated:   now,
			Category:      CategoryFuel,
		},
	}
}

// SeedRequests returns the default request backlog used when no snapshot
// exists: two pending, one already approved.
func SeedRequests(now time.Time) []DistributionRequest {
	return []DistributionRequest{
		{
			ID:          "1",
			ResourceID:  "1",
			RequestedBy: "Central Hospital",
			Priority:    PriorityCritical,
			Amount:      100,
			Purpose:     "Emergency care",
			Status:      StatusPending,
			CreatedAt:   now.Add(-2 * time.Hour),
		},
		{
			ID:          "2",
			ResourceID:  "2",
			RequestedBy: "North Evacuation Center",
			Priority:    PriorityHigh,
			Amount:      50,
			Purpose:     "Civilian population",
			Status:      StatusPending,
			CreatedAt:   now.Add(-1 * time.Hour),
		},
		{
			ID:          "3",
			ResourceID:  "3",
			RequestedBy: "South Clinic",
			Priority:    PriorityCritical,
			Amount:      25,
			Purpose:     "Urgent treatments",
			Status:      StatusApproved,
			CreatedAt:   now.Add(-3 * time.Hour),
		},
	}
}
