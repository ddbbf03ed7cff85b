package mockapi

import (
	"net/url"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/roach88/storefront/internal/catalog"
)

// maxSuggestions caps the suggestion list.
const maxSuggestions = 10

// catalogGate fails item requests while an injected outage is pending.
func (s *Server) catalogGate(c *fiber.Ctx) error {
	s.mu.Lock()
	failing := s.catalogFailures > 0
	if failing {
		s.catalogFailures--
	}
	s.mu.Unlock()

	if failing {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"message": "Service unavailable"})
	}
	return c.Next()
}

func (s *Server) listItems(c *fiber.Ctx) error {
	return c.JSON(s.filter(func(catalog.Record) bool { return true }))
}

func (s *Server) itemsByCategory(c *fiber.Ctx) error {
	name := c.Params("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return c.JSON(s.filter(func(r catalog.Record) bool {
		return strings.EqualFold(r.Category, name)
	}))
}

func (s *Server) search(c *fiber.Ctx) error {
	q := strings.ToLower(strings.TrimSpace(c.Query("query")))
	return c.JSON(s.filter(func(r catalog.Record) bool {
		if q == "" {
			return true
		}
		return strings.Contains(strings.ToLower(r.ItemName), q) ||
			strings.Contains(strings.ToLower(r.Company), q) ||
			strings.Contains(strings.ToLower(r.Category), q)
	}))
}

func (s *Server) suggestions(c *fiber.Ctx) error {
	q := strings.ToLower(strings.TrimSpace(c.Query("query")))
	names := []string{}
	if q == "" {
		return c.JSON(names)
	}

	seen := make(map[string]bool)
	for _, r := range s.filter(func(r catalog.Record) bool {
		return strings.Contains(strings.ToLower(r.ItemName), q)
	}) {
		if !seen[r.ItemName] {
			seen[r.ItemName] = true
			names = append(names, r.ItemName)
		}
	}
	sort.Strings(names)
	if len(names) > maxSuggestions {
		names = names[:maxSuggestions]
	}
	return c.JSON(names)
}

func (s *Server) exactName(c *fiber.Ctx) error {
	name := strings.TrimSpace(c.Query("itemName"))
	return c.JSON(s.filter(func(r catalog.Record) bool {
		return strings.EqualFold(r.ItemName, name)
	}))
}

// filter returns matching records in catalog order, never nil.
func (s *Server) filter(keep func(catalog.Record) bool) []catalog.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []catalog.Record{}
	for _, r := range s.items {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
