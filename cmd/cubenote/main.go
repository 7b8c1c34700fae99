// Command cubenote manages ingredient cube stock and the meal ledger from
// the terminal. Storage and blob drivers are selected through the CUBENOTE_*
// environment variables.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"cubenote/internal/blob"
	"cubenote/internal/core"
)

const usage = `Usage: cubenote <command> [flags]

Commands:
  login       create or switch to a profile
  add-stock   add cubes for a catalog ingredient
  consume     consume one cube outside a meal
  restore     return one cube to stock
  record      record an ingredient into a meal session
  remove      remove a meal entry and restore its cube
  amount      set the grams eaten for a meal entry
  allergy     flag or clear an allergy reaction
  consumed    mark a meal session consumed
  inventory   print the current inventory
  diet        print the diet record
  export      write a backup document to the blob store
  import      restore state from a stored backup
  backups     list stored backups for a user

Run cubenote <command> -h for command flags.`

func main() {
	log.SetFlags(0)
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx := context.Background()
	svc, err := openService()
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	if err := dispatch(ctx, svc, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func openService() (*core.Service, error) {
	store, err := core.OpenPersistentStore(core.DefaultRulesEngine())
	if err != nil {
		return nil, err
	}
	return core.NewService(store, core.WithLogger(slog.Default())), nil
}

func dispatch(ctx context.Context, svc *core.Service, command string, args []string) error {
	switch command {
	case "login":
		return runLogin(ctx, svc, args)
	case "add-stock":
		return runAddStock(ctx, svc, args)
	case "consume":
		return runConsume(ctx, svc, args)
	case "restore":
		return runRestore(ctx, svc, args)
	case "record":
		return runRecord(ctx, svc, args)
	case "remove":
		return runRemove(ctx, svc, args)
	case "amount":
		return runAmount(ctx, svc, args)
	case "allergy":
		return runAllergy(ctx, svc, args)
	case "consumed":
		return runConsumed(ctx, svc, args)
	case "inventory":
		return runInventory(svc, args)
	case "diet":
		return runDiet(svc, args)
	case "export":
		return runExport(ctx, svc, args)
	case "import":
		return runImport(ctx, svc, args)
	case "backups":
		return runBackups(ctx, svc, args)
	case "-h", "--help", "help":
		fmt.Println(usage)
		return nil
	default:
		fmt.Fprintln(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

// userFlag wires the shared -user flag, defaulting to the store's current
// user when the flag is omitted.
func userFlag(fs *flag.FlagSet) *string {
	return fs.String("user", "", "profile id (defaults to the current user)")
}

func resolveUser(svc *core.Service, user string) (string, error) {
	if user != "" {
		return user, nil
	}
	current, ok := svc.CurrentUserID()
	if !ok {
		return "", fmt.Errorf("no current user, pass -user or login first")
	}
	return current, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runLogin(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "profile id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return fmt.Errorf("-user is required")
	}
	profile, _, err := svc.Login(ctx, *user)
	if err != nil {
		return err
	}
	return printJSON(profile)
}

func runAddStock(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("add-stock", flag.ExitOnError)
	user := userFlag(fs)
	ingredient := fs.String("ingredient", "", "catalog ingredient id")
	count := fs.Int("count", 1, "number of cubes to add")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	inv, res, err := svc.AddStock(ctx, userID, *ingredient, *count)
	if err != nil {
		return err
	}
	reportWarnings(res)
	return printJSON(inv)
}

func runConsume(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("consume", flag.ExitOnError)
	user := userFlag(fs)
	ingredient := fs.String("ingredient", "", "catalog ingredient id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	consumed, _, err := svc.ConsumeOne(ctx, userID, *ingredient)
	if err != nil {
		return err
	}
	if !consumed {
		fmt.Printf("no stock for %s, nothing consumed\n", *ingredient)
		return nil
	}
	fmt.Printf("consumed one %s\n", *ingredient)
	return nil
}

func runRestore(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	user := userFlag(fs)
	ingredient := fs.String("ingredient", "", "catalog ingredient id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	inv, _, err := svc.RestoreOne(ctx, userID, *ingredient)
	if err != nil {
		return err
	}
	return printJSON(inv[*ingredient])
}

func runRecord(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("record", flag.ExitOnError)
	user := userFlag(fs)
	date := fs.String("date", "", "meal date, YYYY-MM-DD")
	slot := fs.String("slot", "", "breakfast, lunch or dinner")
	ingredient := fs.String("ingredient", "", "catalog ingredient id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	day, res, err := svc.RecordMealIngredient(ctx, userID, *date, core.MealSlot(*slot), *ingredient)
	if err != nil {
		return err
	}
	reportWarnings(res)
	return printJSON(day)
}

func runRemove(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("remove", flag.ExitOnError)
	user := userFlag(fs)
	date := fs.String("date", "", "meal date, YYYY-MM-DD")
	slot := fs.String("slot", "", "breakfast, lunch or dinner")
	index := fs.Int("index", 0, "entry position within the session")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	day, _, err := svc.RemoveMealIngredient(ctx, userID, *date, core.MealSlot(*slot), *index)
	if err != nil {
		return err
	}
	return printJSON(day)
}

func runAmount(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("amount", flag.ExitOnError)
	user := userFlag(fs)
	date := fs.String("date", "", "meal date, YYYY-MM-DD")
	slot := fs.String("slot", "", "breakfast, lunch or dinner")
	index := fs.Int("index", 0, "entry position within the session")
	grams := fs.Int("grams", 0, "grams eaten")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	day, _, err := svc.SetMealIngredientAmount(ctx, userID, *date, core.MealSlot(*slot), *index, *grams)
	if err != nil {
		return err
	}
	return printJSON(day)
}

func runAllergy(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("allergy", flag.ExitOnError)
	user := userFlag(fs)
	ingredient := fs.String("ingredient", "", "catalog ingredient id")
	reacted := fs.Bool("reacted", true, "reaction observed")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	item, _, err := svc.SetAllergyReaction(ctx, userID, *ingredient, *reacted)
	if err != nil {
		return err
	}
	return printJSON(item)
}

func runConsumed(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("consumed", flag.ExitOnError)
	user := userFlag(fs)
	date := fs.String("date", "", "meal date, YYYY-MM-DD")
	slot := fs.String("slot", "", "breakfast, lunch or dinner")
	value := fs.Bool("value", true, "consumed flag")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	session, _, err := svc.MarkMealConsumed(ctx, userID, *date, core.MealSlot(*slot), *value)
	if err != nil {
		return err
	}
	return printJSON(session)
}

func runInventory(svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("inventory", flag.ExitOnError)
	user := userFlag(fs)
	available := fs.Bool("available", false, "only items with stock remaining")
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	if *available {
		return printJSON(svc.AvailableIngredients(userID))
	}
	return printJSON(svc.Inventory(userID))
}

func runDiet(svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("diet", flag.ExitOnError)
	user := userFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	return printJSON(svc.DietRecord(userID))
}

func runExport(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	user := userFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	store, err := blob.Open(ctx)
	if err != nil {
		return err
	}
	key, err := svc.WriteBackup(ctx, store, userID)
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

func runImport(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	key := fs.String("key", "", "backup object key")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return fmt.Errorf("-key is required")
	}
	store, err := blob.Open(ctx)
	if err != nil {
		return err
	}
	res, err := svc.ReadBackup(ctx, store, *key)
	if err != nil {
		return err
	}
	reportWarnings(res)
	fmt.Println("backup imported")
	return nil
}

func runBackups(ctx context.Context, svc *core.Service, args []string) error {
	fs := flag.NewFlagSet("backups", flag.ExitOnError)
	user := userFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	userID, err := resolveUser(svc, *user)
	if err != nil {
		return err
	}
	store, err := blob.Open(ctx)
	if err != nil {
		return err
	}
	infos, err := svc.ListBackups(ctx, store, userID)
	if err != nil {
		return err
	}
	return printJSON(infos)
}

func reportWarnings(res core.Result) {
	for _, v := range res.Violations {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", v.Rule, v.Message)
	}
}
