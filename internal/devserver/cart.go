package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/digitalhat/storefront/internal/domain"
)

type cartItemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// caller must hold s.mu
func (s *Server) cartFor(email string) *domain.Cart {
	cart, ok := s.carts[email]
	if !ok {
		cart = &domain.Cart{Items: []domain.CartItem{}}
		s.carts[email] = cart
	}
	return cart
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if !user.Role.CanOwnCart() {
		respondError(w, http.StatusForbidden, "carts are available to members only")
		return
	}

	s.mu.Lock()
	cart := s.cartFor(user.Email).Clone()
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, cart)
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if !user.Role.CanOwnCart() {
		respondError(w, http.StatusForbidden, "carts are available to members only")
		return
	}

	var req cartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" || req.Quantity < 1 {
		respondError(w, http.StatusBadRequest, "productId and a positive quantity are required")
		return
	}

	s.mu.Lock()
	product, ok := s.findProduct(req.ProductID)
	if !ok {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "product not found")
		return
	}

	cart := s.cartFor(user.Email)
	if cart.Quantity(req.ProductID)+req.Quantity > product.Stock {
		s.mu.Unlock()
		respondError(w, http.StatusConflict, "insufficient stock")
		return
	}

	found := false
	for i := range cart.Items {
		if cart.Items[i].ProductID == req.ProductID {
			cart.Items[i].Quantity += req.Quantity
			found = true
			break
		}
	}
	if !found {
		cart.Items = append(cart.Items, domain.CartItem{ProductID: req.ProductID, Quantity: req.Quantity})
	}
	out := cart.Clone()
	s.mu.Unlock()

	respondJSON(w, http.StatusCreated, out)
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	productID := chi.URLParam(r, "productID")

	var req cartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	product, ok := s.findProduct(productID)
	if !ok {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "product not found")
		return
	}
	if req.Quantity > product.Stock {
		s.mu.Unlock()
		respondError(w, http.StatusConflict, "insufficient stock")
		return
	}

	cart := s.cartFor(user.Email)
	if req.Quantity <= 0 {
		cart.Items = filterOut(cart.Items, productID)
	} else {
		found := false
		for i := range cart.Items {
			if cart.Items[i].ProductID == productID {
				cart.Items[i].Quantity = req.Quantity
				found = true
				break
			}
		}
		if !found {
			s.mu.Unlock()
			respondError(w, http.StatusNotFound, "item not in cart")
			return
		}
	}
	out := cart.Clone()
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, out)
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	productID := chi.URLParam(r, "productID")

	s.mu.Lock()
	cart := s.cartFor(user.Email)
	cart.Items = filterOut(cart.Items, productID)
	out := cart.Clone()
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, out)
}

func filterOut(items []domain.CartItem, productID string) []domain.CartItem {
	out := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			out = append(out, item)
		}
	}
	return out
}
