// Package models holds the GORM schema of the gallery.
package models

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Publication{},
		&Remix{},
		&PublicationComment{},
		&RemixComment{},
		&PublicationLike{},
		&RemixLike{},
		&Subscription{},
		&PageView{},
	}
}
