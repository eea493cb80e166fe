package domain

// Counties are the 47 counties of Kenya offered by the signup and shipping forms.
var Counties = []string{
	"Baringo", "Bomet", "Bungoma", "Busia", "Elgeyo-Marakwet", "Embu", "Garissa",
	"Homa Bay", "Isiolo", "Kajiado", "Kakamega", "Kericho", "Kiambu", "Kilifi",
	"Kirinyaga", "Kisii", "Kisumu", "Kitui", "Kwale", "Laikipia", "Lamu",
	"Machakos", "Makueni", "Mandera", "Marsabit", "Meru", "Migori", "Mombasa",
	"Murang'a", "Nairobi", "Nakuru", "Nandi", "Narok", "Nyamira", "Nyandarua",
	"Nyeri", "Samburu", "Siaya", "Taita-Taveta", "Tana River", "Tharaka-Nithi",
	"Trans Nzoia", "Turkana", "Uasin Gishu", "Vihiga", "Wajir", "West Pokot",
}

func IsCounty(name string) bool {
	for _, c := range Counties {
		if c == name {
			return true
		}
	}
	return false
}
