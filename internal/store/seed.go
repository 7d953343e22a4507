package store

import "github.com/Skotchmaster/farmconnect/internal/models"

const (
	DefaultUserLocation    = "Local Area"
	DefaultProductLocation = "Local Farm"
	EmailDomain            = "farmconnect.com"
)

// SeedProducts returns the starter catalog every cold start begins with.
func SeedProducts() []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Organic Carrots",
			Category:    models.CategoryVegetables,
			Price:       2.5,
			Unit:        "kg",
			Quantity:    100,
			Description: "Freshly harvested organic carrots.",
			Image:       "https://picsum.photos/400/400?random=1",
			FarmerID:    "farmer1",
			FarmerName:  "Green Valley Farm",
			Location:    DefaultProductLocation,
			Seq:         1,
		},
		{
			ID:          "2",
			Name:        "Ripe Tomatoes",
			Category:    models.CategoryVegetables,
			Price:       3.0,
			Unit:        "kg",
			Quantity:    80,
			Description: "Sun-ripened tomatoes for your salads.",
			Image:       "https://picsum.photos/400/400?random=2",
			FarmerID:    "farmer1",
			FarmerName:  "Green Valley Farm",
			Location:    DefaultProductLocation,
			Seq:         2,
		},
		{
			ID:          "3",
			Name:        "Fresh Milk",
			Category:    models.CategoryDairy,
			Price:       1.5,
			Unit:        "liter",
			Quantity:    50,
			Description: "Cold, fresh milk from our happy cows.",
			Image:       "https://picsum.photos/400/400?random=3",
			FarmerID:    "farmer2",
			FarmerName:  "Hilltop Dairy",
			Location:    DefaultProductLocation,
			Seq:         3,
		},
	}
}
