package mockapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/storefront/internal/api"
)

// Claims is the payload of tokens issued by the mock backend.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

const localsAccount = "account"

func (s *Server) register(c *fiber.Ctx) error {
	var req api.Registration
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Name, email and password are required"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[strings.ToLower(req.Email)]; exists {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Email is already registered"})
	}
	s.createAccount(req.Name, req.Email, req.Phone, hash)

	return c.Status(fiber.StatusOK).SendString("User registered successfully")
}

func (s *Server) login(c *fiber.Ctx) error {
	var req api.Credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(strings.TrimSpace(req.Email))]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(req.Password)) != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid email or password"})
	}

	token, err := s.issueToken(acct)
	if err != nil {
		return err
	}
	return c.JSON(api.TokenResponse{Token: token, TokenType: "Bearer"})
}

func (s *Server) probe(c *fiber.Ctx) error {
	return c.SendString("CORS is working!")
}

// requireToken admits requests carrying a valid bearer token.
func (s *Server) requireToken(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) < 7 || header[:7] != "Bearer " {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	claims, err := s.verifyToken(header[7:])
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token"})
	}

	s.mu.Lock()
	acct, ok := s.accounts[strings.ToLower(claims.Email)]
	s.mu.Unlock()
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unknown user"})
	}

	c.Locals(localsAccount, acct)
	return c.Next()
}

func (s *Server) issueToken(acct *account) (string, error) {
	s.mu.Lock()
	secret := s.secret
	s.mu.Unlock()

	now := s.now()
	claims := Claims{
		Email: acct.email,
		Name:  acct.name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "storefront-mock",
			Subject:   strconv.FormatInt(acct.id, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (s *Server) verifyToken(raw string) (*Claims, error) {
	s.mu.Lock()
	secret := s.secret
	s.mu.Unlock()

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// createAccount stores a new account. Callers hold mu.
func (s *Server) createAccount(name, email, phone string, hash []byte) *account {
	acct := &account{
		id:           s.nextUserID,
		name:         name,
		email:        strings.TrimSpace(email),
		phone:        phone,
		passwordHash: hash,
		addresses:    []api.Address{},
		orders:       []api.Order{},
	}
	s.nextUserID++
	s.accounts[strings.ToLower(acct.email)] = acct
	return acct
}
