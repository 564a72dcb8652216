package dogs

// sampleDogs es el catálogo inicial cuando la base está vacía.
func sampleDogs() []CreateInput {
	return []CreateInput{
		{
			Name:       "Buddy",
			Age:        "3 years",
			Breed:      "Golden Retriever",
			Image:      "https://images.unsplash.com/photo-1552053831-71594a27632d?w=400",
			Bio:        "Loves playing fetch and swimming!",
			Location:   "New York, NY",
			Interests:  []string{"fetch", "swimming", "walks"},
			Vaccinated: true,
			Neutered:   true,
		},
		{
			Name:       "Luna",
			Age:        "2 years",
			Breed:      "Husky",
			Image:      "https://images.unsplash.com/photo-1547407139-3c921a66005c?w=400",
			Bio:        "Adventure seeker and snow lover!",
			Location:   "Seattle, WA",
			Interests:  []string{"hiking", "snow", "running"},
			Vaccinated: true,
		},
		{
			Name:       "Max",
			Age:        "4 years",
			Breed:      "German Shepherd",
			Image:      "https://images.unsplash.com/photo-1589941013453-ec89f33b5e95?w=400",
			Bio:        "Protective and loyal companion!",
			Location:   "Los Angeles, CA",
			Interests:  []string{"training", "protection", "loyalty"},
			Vaccinated: true,
			Neutered:   true,
		},
		{
			Name:       "Bella",
			Age:        "1 year",
			Breed:      "Corgi",
			Image:      "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=400",
			Bio:        "Small but mighty! Loves treats and cuddles.",
			Location:   "Austin, TX",
			Interests:  []string{"cuddles", "treats", "play"},
			Vaccinated: true,
		},
		{
			Name:       "Rocky",
			Age:        "5 years",
			Breed:      "Boxer",
			Image:      "https://images.unsplash.com/photo-1587300003388-59208cc962cb?w=400",
			Bio:        "Energetic and playful! Always ready for fun.",
			Location:   "Miami, FL",
			Interests:  []string{"energy", "play", "fun"},
			Vaccinated: true,
			Neutered:   true,
		},
	}
}
