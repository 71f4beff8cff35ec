// Package authz is the single place role checks happen. Handlers and
// services ask capability questions instead of inspecting role strings.
package authz

import "marketplace-backend/internal/domain"

// IsAdmin reports whether the actor holds the admin role.
func IsAdmin(actor *domain.User) bool {
	return actor != nil && actor.Role == domain.RoleAdmin
}

// CanManageProducts reports whether the actor may create products.
func CanManageProducts(actor *domain.User) bool {
	if actor == nil {
		return false
	}
	return actor.Role == domain.RoleSeller || actor.Role == domain.RoleAdmin
}

// CanEditProduct reports whether the actor may modify an existing product:
// admins always, sellers only their own.
func CanEditProduct(actor *domain.User, p *domain.Product) bool {
	if actor == nil || p == nil {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return actor.Role == domain.RoleSeller && p.SellerID == actor.ID
}

// CanViewOrder reports whether the actor may read the order. sellsInOrder
// tells whether the actor has a product among the order's items.
func CanViewOrder(actor *domain.User, o *domain.Order, sellsInOrder bool) bool {
	if actor == nil || o == nil {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	if actor.Role == domain.RoleSeller && sellsInOrder {
		return true
	}
	return o.CustomerID == actor.ID
}

// CanUpdateOrderStatus reports whether the actor may change the order's
// status or fulfilment fields: admins, or sellers with products in it.
func CanUpdateOrderStatus(actor *domain.User, sellsInOrder bool) bool {
	if actor == nil {
		return false
	}
	if actor.Role == domain.RoleAdmin {
		return true
	}
	return actor.Role == domain.RoleSeller && sellsInOrder
}

// CanCancelOrder reports whether the actor may cancel the order: the
// order's customer or an admin.
func CanCancelOrder(actor *domain.User, o *domain.Order) bool {
	if actor == nil || o == nil {
		return false
	}
	return actor.Role == domain.RoleAdmin || o.CustomerID == actor.ID
}
