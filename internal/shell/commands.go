package shell

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/session"
)

var commands []command

func init() {
	commands = []command{
		{"all", "all", "show every item", cmdAll},
		{"type", "type TEXT", "edit the search box; two or more characters fetch suggestions", cmdType},
		{"search", "search TEXT", "submit a search", cmdSearch},
		{"pick", "pick NAME", "pick a suggestion", cmdPick},
		{"category", "category NAME", "filter by category", cmdCategory},
		{"items", "items", "list the visible catalog", cmdItems},
		{"bag", "bag add|rm ID | bag ls", "edit or show the bag", cmdBag},
		{"wish", "wish add|rm ID | wish ls", "edit or show the wishlist", cmdWish},
		{"login", "login EMAIL PASSWORD", "sign in", cmdLogin},
		{"register", "register EMAIL PASSWORD PHONE NAME", "create an account and sign in", cmdRegister},
		{"logout", "logout", "sign out", cmdLogout},
		{"whoami", "whoami", "show the session", cmdWhoami},
		{"open", "open PATH", "navigate to a view", cmdOpen},
		{"addr", "addr add NAME; LINE1; CITY; STATE; PINCODE | addr ls", "manage delivery addresses", cmdAddr},
		{"order", "order [PAYMENT] [ADDRESS_ID]", "place an order for the bag", cmdOrder},
		{"orders", "orders", "list past orders", cmdOrders},
		{"state", "state", "print the store snapshot as JSON", cmdState},
		{"retry", "retry", "repeat the last failed catalog query", cmdRetry},
		{"help", "help", "list commands", cmdHelp},
		{"quit", "quit", "leave the shell", cmdQuit},
	}
}

func usage(name string) error {
	for _, c := range commands {
		if c.name == name {
			return &UsageError{Command: name, Usage: c.usage}
		}
	}
	return &UsageError{Command: name}
}

func cmdAll(s *Shell, ctx context.Context, _ []string) error {
	if err := s.app.Query.ShowAll(ctx); err != nil {
		return err
	}
	s.printItems(s.app.Store.GetState().Catalog)
	return nil
}

func cmdType(s *Shell, ctx context.Context, args []string) error {
	if err := s.app.Query.Type(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	search := s.app.Query.Search()
	if !search.ShowSuggestions {
		return nil
	}
	for _, name := range search.Suggestions {
		s.printf("  %s\n", name)
	}
	return nil
}

func cmdSearch(s *Shell, ctx context.Context, args []string) error {
	if err := s.app.Query.SubmitSearch(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	s.printItems(s.app.Store.GetState().Catalog)
	return nil
}

func cmdPick(s *Shell, ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("pick")
	}
	if err := s.app.Query.PickSuggestion(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	s.printItems(s.app.Store.GetState().Catalog)
	return nil
}

func cmdCategory(s *Shell, ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usage("category")
	}
	if err := s.app.Query.SelectCategory(ctx, strings.Join(args, " ")); err != nil {
		return err
	}
	s.printItems(s.app.Store.GetState().Catalog)
	return nil
}

func cmdItems(s *Shell, _ context.Context, _ []string) error {
	s.printItems(s.app.Store.GetState().Catalog)
	return nil
}

func cmdBag(s *Shell, _ context.Context, args []string) error {
	if len(args) == 1 && args[0] == "ls" {
		view := s.app.Bag()
		s.printItems(view.Items)
		if view.Hidden > 0 {
			s.printf("(%d more not in the current listing)\n", view.Hidden)
		}
		s.printf("total: %s\n", price(view.Total))
		return nil
	}
	op, id, err := membershipArgs("bag", args)
	if err != nil {
		return err
	}
	if op == "add" {
		return s.app.AddToBag(id)
	}
	return s.app.RemoveFromBag(id)
}

func cmdWish(s *Shell, _ context.Context, args []string) error {
	if len(args) == 1 && args[0] == "ls" {
		s.printItems(s.app.Wishlist())
		return nil
	}
	op, id, err := membershipArgs("wish", args)
	if err != nil {
		return err
	}
	has := s.app.Store.GetState().InWishlist(id)
	if op == "add" && has || op == "rm" && !has {
		return nil
	}
	return s.app.ToggleWishlist(id)
}

func membershipArgs(name string, args []string) (string, int64, error) {
	if len(args) != 2 || args[0] != "add" && args[0] != "rm" {
		return "", 0, usage(name)
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return "", 0, usage(name)
	}
	return args[0], id, nil
}

func cmdLogin(s *Shell, ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("login")
	}
	user, err := s.app.Session.Login(ctx, session.LoginForm{Email: args[0], Password: args[1]})
	if err != nil {
		return err
	}
	s.printf("signed in as %s\n", user.Email)
	return nil
}

func cmdRegister(s *Shell, ctx context.Context, args []string) error {
	if len(args) < 4 {
		return usage("register")
	}
	user, err := s.app.Session.Register(ctx, session.RegisterForm{
		Email:           args[0],
		Password:        args[1],
		ConfirmPassword: args[1],
		Phone:           args[2],
		Name:            strings.Join(args[3:], " "),
	})
	if err != nil {
		return err
	}
	s.printf("registered and signed in as %s\n", user.Email)
	return nil
}

func cmdLogout(s *Shell, ctx context.Context, _ []string) error {
	if err := s.app.Session.Logout(ctx); err != nil {
		return err
	}
	s.printf("signed out\n")
	return nil
}

func cmdWhoami(s *Shell, _ context.Context, _ []string) error {
	sess := s.app.Store.GetState().Session
	if !sess.IsAuthenticated || sess.User == nil {
		s.printf("anonymous\n")
		return nil
	}
	s.printf("%s <%s>\n", sess.User.Name, sess.User.Email)
	return nil
}

func cmdOpen(s *Shell, _ context.Context, args []string) error {
	if len(args) != 1 {
		return usage("open")
	}
	d, err := s.app.Open(args[0])
	if err != nil {
		return err
	}
	if d.Redirected() {
		s.printf("%s -> %s (%s)\n", d.RedirectedFrom, d.Path, d.View)
		return nil
	}
	s.printf("%s (%s)\n", d.Path, d.View)
	return nil
}

func cmdAddr(s *Shell, ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "ls" {
		addrs, err := s.app.Client.Addresses(ctx)
		if err != nil {
			return err
		}
		for _, a := range addrs {
			mark := " "
			if a.IsDefault {
				mark = "*"
			}
			s.printf("%s %d  %s\n", mark, a.ID, a.Format())
		}
		return nil
	}
	if len(args) < 2 || args[0] != "add" {
		return usage("addr")
	}

	parts := strings.Split(strings.Join(args[1:], " "), ";")
	if len(parts) != 5 {
		return usage("addr")
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	addr, err := s.app.Client.AddAddress(ctx, api.Address{
		FullName:     parts[0],
		AddressLine1: parts[1],
		City:         parts[2],
		State:        parts[3],
		Pincode:      parts[4],
		AddressType:  "home",
	})
	if err != nil {
		return err
	}
	s.printf("saved address %d\n", addr.ID)
	return nil
}

func cmdOrder(s *Shell, ctx context.Context, args []string) error {
	var co app.Checkout
	switch len(args) {
	case 2:
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return usage("order")
		}
		co.AddressID = id
		fallthrough
	case 1:
		co.PaymentMethod = args[0]
	case 0:
	default:
		return usage("order")
	}

	order, err := s.app.PlaceOrder(ctx, co)
	if err != nil {
		return err
	}
	s.printf("placed %s: %d items, %s\n", order.OrderNumber, len(order.OrderItems), price(order.TotalAmount))
	return nil
}

func cmdOrders(s *Shell, ctx context.Context, _ []string) error {
	orders, err := s.app.Client.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		s.printf("no orders\n")
		return nil
	}
	for _, o := range orders {
		s.printf("%s  %s  %s  %s\n", o.OrderNumber, o.Status, price(o.TotalAmount), o.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func cmdState(s *Shell, _ context.Context, _ []string) error {
	data, err := json.MarshalIndent(s.app.Store.GetState(), "", "  ")
	if err != nil {
		return err
	}
	s.printf("%s\n", data)
	return nil
}

func cmdRetry(s *Shell, ctx context.Context, _ []string) error {
	if err := s.app.Query.Retry(ctx); err != nil {
		return err
	}
	s.printItems(s.app.Store.GetState().Catalog)
	return nil
}

func cmdHelp(s *Shell, _ context.Context, _ []string) error {
	for _, c := range commands {
		s.printf("  %-48s %s\n", c.usage, c.help)
	}
	return nil
}

func cmdQuit(*Shell, context.Context, []string) error {
	return ErrQuit
}

func (s *Shell) printItems(items []catalog.Item) {
	if len(items) == 0 {
		s.printf("no items\n")
		return
	}
	for _, it := range items {
		s.printf("  %3d  %-14s %-22s %s\n", it.ID, it.Brand, it.Name, price(it.CurrentPrice))
	}
}

func price(v float64) string {
	return "Rs " + strconv.FormatFloat(v, 'f', 2, 64)
}
