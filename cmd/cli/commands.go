package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/and161185/storekeeper/internal/wire"
)

type command func(ctx context.Context, c conn, args []string) error

var commands = map[string]command{
	"login":          cmdLogin,
	"logout":         cmdLogout,
	"verify-request": cmdVerifyRequest,
	"verify":         cmdVerify,
	"settings":       cmdSettings,
	"products":       cmdProducts,
	"product-add":    cmdProductAdd,
	"product-edit":   cmdProductEdit,
	"product-rm":     cmdProductRm,
	"stock-in":       cmdStock("stock-in", "in"),
	"stock-out":      cmdStock("stock-out", "out"),
	"stock-log":      cmdStockLog,
	"sell":           cmdSell,
	"sales":          cmdSales,
	"summary":        cmdSummary,
	"dashboard":      cmdDashboard,
	"users":          cmdUsers,
	"user-add":       cmdUserAdd,
	"user-edit":      cmdUserEdit,
	"user-rm":        cmdUserRm,
	"unlock":         cmdUnlock,
}

// ------- flag helpers -------

func usageErr(format string, args ...any) error {
	return fmt.Errorf("usage: "+format, args...)
}

// setFlags returns the names of flags given on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func optString(set map[string]bool, name, v string) *string {
	if !set[name] {
		return nil
	}
	return &v
}

func parseDecimal(name, v string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("-%s: %q is not a number", name, v)
	}
	return d, nil
}

func optDecimal(set map[string]bool, name, v string) (*decimal.Decimal, error) {
	if !set[name] {
		return nil, nil
	}
	d, err := parseDecimal(name, v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseDate(v string) error {
	if v == "" {
		return nil
	}
	if _, err := time.Parse(wire.DateLayout, v); err != nil {
		return fmt.Errorf("-date: %q is not YYYY-MM-DD", v)
	}
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ExitOnError)
}

// ------- auth -------

func cmdLogin(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("login")
	u := fs.String("u", "", "username")
	p := fs.String("p", "", "password (or SK_PASSWORD)")
	_ = fs.Parse(args)
	if *p == "" {
		*p = os.Getenv("SK_PASSWORD")
	}
	if *u == "" || *p == "" {
		return usageErr("login -u <username> -p <password>")
	}

	cc, cli, err := c.dial("")
	if err != nil {
		return err
	}
	defer cc.Close()

	resp, err := cli.Login(ctx, &wire.LoginRequest{Username: *u, Password: *p})
	if err != nil {
		return err
	}
	exp := resp.ExpiresAt
	if exp.IsZero() {
		exp = time.Now().Add(15 * time.Minute)
	}
	if err := saveToken(tokenFile{
		AccessToken: resp.AccessToken,
		ExpiresAt:   exp,
		Username:    resp.User.Username,
		Role:        resp.User.Role,
	}); err != nil {
		return err
	}
	fmt.Printf("ok (%s, %s) until %s\n", resp.User.Username, resp.User.Role, exp.Local().Format(time.RFC3339))
	return nil
}

func cmdLogout(context.Context, conn, []string) error {
	if err := removeToken(); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func cmdVerifyRequest(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("verify-request")
	u := fs.String("u", "", "username")
	_ = fs.Parse(args)
	if *u == "" {
		return usageErr("verify-request -u <username>")
	}
	cc, cli, err := c.dial("")
	if err != nil {
		return err
	}
	defer cc.Close()

	resp, err := cli.RequestVerification(ctx, &wire.RequestVerificationRequest{Username: *u})
	if err != nil {
		return err
	}
	fmt.Printf("code sent to %s, valid until %s\n", resp.Destination, resp.ExpiresAt.Local().Format(time.RFC3339))
	return nil
}

func cmdVerify(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("verify")
	u := fs.String("u", "", "username")
	code := fs.String("code", "", "verification code")
	_ = fs.Parse(args)
	if *u == "" || *code == "" {
		return usageErr("verify -u <username> -code <code>")
	}
	cc, cli, err := c.dial("")
	if err != nil {
		return err
	}
	defer cc.Close()

	if _, err := cli.VerifyEmail(ctx, &wire.VerifyEmailRequest{Username: *u, Code: *code}); err != nil {
		return err
	}
	fmt.Println("ok, you can log in again")
	return nil
}

func cmdUnlock(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("unlock")
	u := fs.String("u", "", "username")
	_ = fs.Parse(args)
	if *u == "" {
		return usageErr("unlock -u <username>")
	}
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()

	if _, err := cli.ResetLoginAttempts(ctx, &wire.ResetLoginAttemptsRequest{Username: *u}); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

// ------- settings -------

func cmdSettings(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("settings")
	name := fs.String("store-name", "", "store name")
	address := fs.String("store-address", "", "store address")
	logo := fs.String("store-logo", "", "logo URL or data URI")
	admin := fs.String("store-admin", "", "admin contact")
	cs := fs.String("store-cs", "", "customer service contact")
	theme := fs.String("theme", "", "light|dark")
	lang := fs.String("language", "", "id|en")
	currency := fs.String("currency", "", "ISO currency, e.g. IDR")
	tz := fs.String("timezone", "", "IANA timezone, e.g. Asia/Jakarta")
	msg := fs.String("login-message", "", "login screen message")
	img := fs.String("login-image", "", "login screen image")
	ownerEmail := fs.String("owner-email", "", "fallback address for verification codes")
	_ = fs.Parse(args)
	set := setFlags(fs)

	if len(set) == 0 {
		// public read; a saved token additionally reveals owner-only fields
		token, _ := loadToken()
		cc, cli, err := c.dial(token)
		if err != nil {
			return err
		}
		defer cc.Close()
		st, err := cli.GetSettings(ctx, &wire.Empty{})
		if err != nil {
			return err
		}
		printJSON(st)
		return nil
	}

	req := &wire.UpdateSettingsRequest{
		StoreName:    optString(set, "store-name", *name),
		StoreAddress: optString(set, "store-address", *address),
		StoreLogo:    optString(set, "store-logo", *logo),
		StoreAdmin:   optString(set, "store-admin", *admin),
		StoreCS:      optString(set, "store-cs", *cs),
		Theme:        optString(set, "theme", *theme),
		Language:     optString(set, "language", *lang),
		Currency:     optString(set, "currency", *currency),
		Timezone:     optString(set, "timezone", *tz),
		LoginMessage: optString(set, "login-message", *msg),
		LoginImage:   optString(set, "login-image", *img),
		OwnerEmail:   optString(set, "owner-email", *ownerEmail),
	}
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	st, err := cli.UpdateSettings(ctx, req)
	if err != nil {
		return err
	}
	printJSON(st)
	return nil
}

// ------- products & stock -------

func cmdProducts(ctx context.Context, c conn, _ []string) error {
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.ListProducts(ctx, &wire.Empty{})
	if err != nil {
		return err
	}
	printJSON(out.Products)
	return nil
}

func cmdProductAdd(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("product-add")
	name := fs.String("name", "", "product name")
	sku := fs.String("sku", "", "SKU")
	unit := fs.String("unit", "", "unit (default pcs)")
	buy := fs.String("buy", "0", "buy price")
	sell := fs.String("sell", "0", "sell price")
	stock := fs.String("stock", "0", "opening stock")
	_ = fs.Parse(args)
	if *name == "" {
		return usageErr("product-add -name <name> -buy <price> -sell <price>")
	}
	req := &wire.CreateProductRequest{Name: *name, SKU: *sku, Unit: *unit}
	var err error
	if req.BuyPrice, err = parseDecimal("buy", *buy); err != nil {
		return err
	}
	if req.SellPrice, err = parseDecimal("sell", *sell); err != nil {
		return err
	}
	if req.OpeningStock, err = parseDecimal("stock", *stock); err != nil {
		return err
	}

	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.CreateProduct(ctx, req)
	if err != nil {
		return err
	}
	printJSON(out)
	return nil
}

func cmdProductEdit(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("product-edit")
	id := fs.String("id", "", "product id")
	name := fs.String("name", "", "product name")
	sku := fs.String("sku", "", "SKU")
	unit := fs.String("unit", "", "unit")
	buy := fs.String("buy", "", "buy price")
	sell := fs.String("sell", "", "sell price")
	_ = fs.Parse(args)
	set := setFlags(fs)
	if *id == "" || len(set) < 2 {
		return usageErr("product-edit -id <id> [-name .. -sku .. -unit .. -buy .. -sell ..]")
	}
	req := &wire.UpdateProductRequest{
		ID:   *id,
		Name: optString(set, "name", *name),
		SKU:  optString(set, "sku", *sku),
		Unit: optString(set, "unit", *unit),
	}
	var err error
	if req.BuyPrice, err = optDecimal(set, "buy", *buy); err != nil {
		return err
	}
	if req.SellPrice, err = optDecimal(set, "sell", *sell); err != nil {
		return err
	}

	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.UpdateProduct(ctx, req)
	if err != nil {
		return err
	}
	printJSON(out)
	return nil
}

func cmdProductRm(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("product-rm")
	id := fs.String("id", "", "product id")
	_ = fs.Parse(args)
	if *id == "" {
		return usageErr("product-rm -id <id>")
	}
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	if _, err := cli.DeleteProduct(ctx, &wire.DeleteProductRequest{ID: *id}); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

// cmdStock builds stock-in and stock-out. The price flag follows the direction.
func cmdStock(name, typ string) command {
	return func(ctx context.Context, c conn, args []string) error {
		fs := newFlagSet(name)
		id := fs.String("id", "", "product id")
		qty := fs.String("qty", "", "quantity")
		price := fs.String(priceFlag(typ), "", "unit price (defaults to the product price)")
		notes := fs.String("notes", "", "notes")
		_ = fs.Parse(args)
		set := setFlags(fs)
		if *id == "" || *qty == "" {
			return usageErr("%s -id <id> -qty <qty> [-%s <price>] [-notes ..]", name, priceFlag(typ))
		}
		req := &wire.RecordStockRequest{ProductID: *id, Type: typ, Notes: *notes}
		var err error
		if req.Quantity, err = parseDecimal("qty", *qty); err != nil {
			return err
		}
		p, err := optDecimal(set, priceFlag(typ), *price)
		if err != nil {
			return err
		}
		if typ == "in" {
			req.BuyPrice = p
		} else {
			req.SellPrice = p
		}

		cc, cli, err := c.authed()
		if err != nil {
			return err
		}
		defer cc.Close()
		out, err := cli.RecordStock(ctx, req)
		if err != nil {
			return err
		}
		printJSON(out)
		return nil
	}
}

func priceFlag(typ string) string {
	if typ == "in" {
		return "buy"
	}
	return "sell"
}

func cmdStockLog(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("stock-log")
	id := fs.String("id", "", "product id (all when empty)")
	_ = fs.Parse(args)
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.ListStockTransactions(ctx, &wire.ListStockTransactionsRequest{ProductID: *id})
	if err != nil {
		return err
	}
	printJSON(out.Transactions)
	return nil
}

// ------- sales -------

func cmdSell(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("sell")
	id := fs.String("id", "", "product id")
	qty := fs.String("qty", "1", "quantity")
	_ = fs.Parse(args)
	if *id == "" {
		return usageErr("sell -id <id> -qty <qty>")
	}
	q, err := parseDecimal("qty", *qty)
	if err != nil {
		return err
	}
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.RecordSale(ctx, &wire.RecordSaleRequest{ProductID: *id, Quantity: q})
	if err != nil {
		return err
	}
	printJSON(out.Sale)
	return nil
}

func salesQuery(name string, args []string) (*wire.SalesQuery, error) {
	fs := newFlagSet(name)
	view := fs.String("view", "all", "all|date|week|month|year")
	date := fs.String("date", "", "reference day YYYY-MM-DD (today when empty)")
	_ = fs.Parse(args)
	if err := parseDate(*date); err != nil {
		return nil, err
	}
	return &wire.SalesQuery{View: *view, Date: *date}, nil
}

func cmdSales(ctx context.Context, c conn, args []string) error {
	q, err := salesQuery("sales", args)
	if err != nil {
		return err
	}
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.ListSales(ctx, q)
	if err != nil {
		return err
	}
	printJSON(out.Sales)
	return nil
}

func cmdSummary(ctx context.Context, c conn, args []string) error {
	q, err := salesQuery("summary", args)
	if err != nil {
		return err
	}
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.SalesSummary(ctx, q)
	if err != nil {
		return err
	}
	printJSON(out)
	return nil
}

func cmdDashboard(ctx context.Context, c conn, _ []string) error {
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.Dashboard(ctx, &wire.Empty{})
	if err != nil {
		return err
	}
	printJSON(out)
	return nil
}

// ------- users -------

func cmdUsers(ctx context.Context, c conn, _ []string) error {
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.ListUsers(ctx, &wire.Empty{})
	if err != nil {
		return err
	}
	printJSON(out.Users)
	return nil
}

func cmdUserAdd(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("user-add")
	u := fs.String("u", "", "username")
	p := fs.String("p", "", "password")
	email := fs.String("email", "", "email for verification codes")
	_ = fs.Parse(args)
	if *u == "" || *p == "" {
		return usageErr("user-add -u <username> -p <password> [-email ..]")
	}
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.CreateUser(ctx, &wire.CreateUserRequest{Username: *u, Password: *p, Email: *email})
	if err != nil {
		return err
	}
	printJSON(out)
	return nil
}

func cmdUserEdit(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("user-edit")
	id := fs.String("id", "", "user id")
	u := fs.String("u", "", "new username")
	p := fs.String("p", "", "new password")
	email := fs.String("email", "", "new email")
	_ = fs.Parse(args)
	set := setFlags(fs)
	if *id == "" || len(set) < 2 {
		return usageErr("user-edit -id <id> [-u .. -p .. -email ..]")
	}
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	out, err := cli.UpdateUser(ctx, &wire.UpdateUserRequest{
		ID:       *id,
		Username: optString(set, "u", *u),
		Password: optString(set, "p", *p),
		Email:    optString(set, "email", *email),
	})
	if err != nil {
		return err
	}
	printJSON(out)
	return nil
}

func cmdUserRm(ctx context.Context, c conn, args []string) error {
	fs := newFlagSet("user-rm")
	id := fs.String("id", "", "user id")
	_ = fs.Parse(args)
	if *id == "" {
		return errors.New("usage: user-rm -id <id>")
	}
	cc, cli, err := c.authed()
	if err != nil {
		return err
	}
	defer cc.Close()
	if _, err := cli.DeleteUser(ctx, &wire.DeleteUserRequest{ID: *id}); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}
