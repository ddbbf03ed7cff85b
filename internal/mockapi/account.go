package mockapi

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/roach88/storefront/internal/api"
)

func accountOf(c *fiber.Ctx) *account {
	return c.Locals(localsAccount).(*account)
}

func (s *Server) profile(c *fiber.Ctx) error {
	acct := accountOf(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(api.Profile{
		ID:    acct.id,
		Name:  acct.name,
		Email: acct.email,
		Phone: acct.phone,
	})
}

func (s *Server) addresses(c *fiber.Ctx) error {
	acct := accountOf(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(acct.addresses)
}

func (s *Server) addAddress(c *fiber.Ctx) error {
	var addr api.Address
	if err := c.BodyParser(&addr); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if strings.TrimSpace(addr.AddressLine1) == "" || strings.TrimSpace(addr.City) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Address line and city are required"})
	}

	acct := accountOf(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	addr.ID = s.nextAddrID
	s.nextAddrID++
	if len(acct.addresses) == 0 {
		addr.IsDefault = true
	}
	if addr.IsDefault {
		for i := range acct.addresses {
			acct.addresses[i].IsDefault = false
		}
	}
	acct.addresses = append(acct.addresses, addr)
	return c.Status(fiber.StatusCreated).JSON(addr)
}

func (s *Server) placeOrder(c *fiber.Ctx) error {
	var req api.OrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Order has no items"})
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Delivery address is required"})
	}

	acct := accountOf(c)
	id := s.ids.Generate()

	s.mu.Lock()
	defer s.mu.Unlock()
	order := api.Order{
		ID:              id,
		OrderNumber:     fmt.Sprintf("ORD-%d-%03d", acct.id, len(acct.orders)+1),
		Status:          "PLACED",
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		TotalAmount:     req.TotalAmount,
		OrderItems:      append([]api.OrderLine(nil), req.Items...),
		CreatedAt:       s.now().UTC(),
	}
	acct.orders = append(acct.orders, order)
	return c.Status(fiber.StatusCreated).JSON(order)
}

func (s *Server) listOrders(c *fiber.Ctx) error {
	acct := accountOf(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	return c.JSON(acct.orders)
}

func (s *Server) getOrder(c *fiber.Ctx) error {
	acct := accountOf(c)
	id := c.Params("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range acct.orders {
		if o.ID == id {
			return c.JSON(o)
		}
	}
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Order not found"})
}
