package catalog

var orderStatuses = []string{"pending", "processing", "dispatched", "delivered", "cancelled"}

// Default returns the catalog of storefront back office pages.
func Default() *Catalog {
	return New(
		Resource{
			Role: RoleAdmin, Name: "categories", SortByID: true,
			Columns:      []string{"id", "name", "description"},
			Capabilities: []Capability{CanCreate, CanUpdate, CanDelete},
		},
		Resource{
			Role: RoleAdmin, Name: "buyers", SortByID: true,
			Columns:      []string{"id", "name", "email", "phone", "blocked"},
			Capabilities: []Capability{CanBlock},
		},
		Resource{
			Role: RoleAdmin, Name: "sellers", SortByID: true,
			Columns:       []string{"id", "name", "email", "shop_name", "blocked"},
			Capabilities:  []Capability{CanBlock},
			CustomActions: []string{"verify"},
		},
		Resource{
			Role: RoleAdmin, Name: "riders", SortByID: true,
			Columns:      []string{"id", "name", "phone", "vehicle", "blocked"},
			Capabilities: []Capability{CanBlock},
		},
		Resource{
			Role: RoleAdmin, Name: "purchasers", SortByID: true,
			Columns:      []string{"id", "name", "email", "blocked"},
			Capabilities: []Capability{CanBlock},
		},
		Resource{
			Role: RoleAdmin, Name: "orders", Envelope: "orders",
			Columns:      []string{"id", "buyer_name", "total", "status", "created_at"},
			Capabilities: []Capability{CanStatus},
			Statuses:     orderStatuses,
		},
		Resource{
			Role: RoleAdmin, Name: "tiers", SortByID: true,
			Columns:      []string{"id", "name", "price", "max_ads"},
			Capabilities: []Capability{CanCreate, CanUpdate, CanDelete},
		},
		Resource{
			Role: RoleAdmin, Name: "promotions", SortByID: true,
			Columns:      []string{"id", "title", "discount", "status", "ends_at"},
			Capabilities: []Capability{CanCreate, CanStatus, CanDelete},
			Statuses:     []string{"active", "inactive"},
		},
		Resource{
			Role: RoleAdmin, Name: "content",
			Columns:      []string{"id", "title", "slug", "updated_at"},
			Capabilities: []Capability{CanUpdate, CanDelete},
		},
		Resource{
			Role: RoleAdmin, Name: "notifications",
			Columns:       []string{"id", "title", "message", "read", "created_at"},
			CustomActions: []string{"read"},
		},
		Resource{
			Role: RoleAdmin, Name: "banners", SortByID: true,
			Columns:      []string{"id", "title", "image_url"},
			Capabilities: []Capability{CanUpload, CanDelete},
			UploadField:  "image",
		},
		Resource{
			Role: RoleAdmin, Name: "wishlists", SortByID: true,
			Columns: []string{"id", "buyer_name", "ad_title", "created_at"},
		},
		Resource{
			Role: RoleSeller, Name: "orders", Envelope: "orders",
			Columns:      []string{"id", "buyer_name", "total", "status"},
			Capabilities: []Capability{CanStatus},
			Statuses:     []string{"processing", "dispatched", "cancelled"},
		},
		Resource{
			Role: RoleSeller, Name: "ads", SortByID: true,
			Columns:      []string{"id", "title", "price", "quantity"},
			Capabilities: []Capability{CanCreate, CanUpdate, CanDelete},
		},
		Resource{
			Role: RoleBuyer, Name: "wishlists",
			Columns:      []string{"id", "ad_title", "price"},
			Capabilities: []Capability{CanDelete},
		},
		Resource{
			Role: RoleBuyer, Name: "orders", Envelope: "orders",
			Columns: []string{"id", "total", "status", "created_at"},
		},
		Resource{
			Role: RoleRider, Name: "orders", Envelope: "orders",
			Columns:      []string{"id", "delivery_address", "status"},
			Capabilities: []Capability{CanStatus},
			Statuses:     []string{"dispatched", "delivered"},
		},
		Resource{
			Role: RolePurchaser, Name: "orders", Envelope: "orders",
			Columns:      []string{"id", "seller_name", "total", "status"},
			Capabilities: []Capability{CanStatus},
			Statuses:     orderStatuses,
		},
		Resource{
			Role: RoleSales, Name: "buyers", SortByID: true,
			Columns: []string{"id", "name", "email", "phone"},
		},
		Resource{
			Role: RoleSales, Name: "orders", Envelope: "orders",
			Columns: []string{"id", "buyer_name", "total", "status"},
		},
	)
}
