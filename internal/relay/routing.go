package relay

import (
	"support-relay/internal/models"
)

// Routing is the static category to admin table.
type Routing struct {
	admins map[models.Category]int64
}

func NewRouting(table map[models.Category]int64) Routing {
	admins := make(map[models.Category]int64, len(table))
	for category, adminID := range table {
		if adminID != 0 {
			admins[category] = adminID
		}
	}
	return Routing{admins: admins}
}

// AdminFor returns the admin of a category.
func (r Routing) AdminFor(category models.Category) (int64, bool) {
	adminID, ok := r.admins[category]
	return adminID, ok
}

func (r Routing) IsAdmin(userID int64) bool {
	return len(r.CategoriesOf(userID)) > 0
}

// CategoriesOf lists the categories an admin owns, in menu order.
func (r Routing) CategoriesOf(adminID int64) []models.Category {
	var owned []models.Category
	for _, category := range models.AllCategories {
		if owner, ok := r.admins[category]; ok && owner == adminID {
			owned = append(owned, category)
		}
	}
	return owned
}

// Owns reports whether adminID is the admin of category.
func (r Routing) Owns(adminID int64, category models.Category) bool {
	owner, ok := r.admins[category]
	return ok && owner == adminID
}
