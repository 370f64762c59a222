// Command admintool runs one-off administrative tasks against the same
// database and broker the server uses.
package main

import (
    "context"
    "encoding/json"
    "fmt"
    "os"
    "strconv"
    "time"

    "github.com/joho/godotenv"
    "github.com/spf13/cobra"

    "github.com/pistac/admin-backend/internal/config"
    "github.com/pistac/admin-backend/internal/database"
    "github.com/pistac/admin-backend/internal/entitlement"
    "github.com/pistac/admin-backend/internal/logging"
    "github.com/pistac/admin-backend/internal/model"
    "github.com/pistac/admin-backend/internal/queue"
    "github.com/pistac/admin-backend/internal/repository"
    "github.com/pistac/admin-backend/internal/service"
    "github.com/pistac/admin-backend/internal/utils"
)

func main() {
    _ = godotenv.Load()
    logging.Init(os.Getenv("LOG_LEVEL"), true)

    root := &cobra.Command{
        Use:   "admintool",
        Short: "Administrative commands for the admin backend",
    }
    root.AddCommand(migrateCommand(), tokenCommand(), accessCommand(), grantCommand(), revokeCommand(), userCommand())
    if err := root.ExecuteContext(context.Background()); err != nil {
        os.Exit(1)
    }
}

// env bundles what the database-backed commands need.
type env struct {
    resolver *entitlement.Resolver
    users    *entitlement.Users
    close    func()
}

func open(ctx context.Context) (*env, error) {
    cfg := config.Load()
    db, err := database.Open(ctx, cfg)
    if err != nil {
        return nil, err
    }
    var events queue.Publisher = queue.NopPublisher{}
    closers := []func(){func() { _ = db.Close() }}
    if qcfg := config.LoadQueueConfig(); qcfg.URL != "" {
        pub := service.NewAuditPublisher(qcfg.URL, qcfg.AuditQueue)
        events = pub
        closers = append(closers, func() { _ = pub.Close() })
    }
    users := repository.NewUserRepo(db)
    return &env{
        resolver: entitlement.NewResolver(users, repository.NewCourseRepo(db), repository.NewCourseAccessRepo(db), events),
        users:    entitlement.NewUsers(users, events),
        close: func() {
            for i := len(closers) - 1; i >= 0; i-- {
                closers[i]()
            }
        },
    }, nil
}

func parseIDArg(s, name string) (uint64, error) {
    id, err := strconv.ParseUint(s, 10, 64)
    if err != nil || id == 0 {
        return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
    }
    return id, nil
}

func printJSON(v any) error {
    enc := json.NewEncoder(os.Stdout)
    enc.SetIndent("", "  ")
    return enc.Encode(v)
}

func migrateCommand() *cobra.Command {
    return &cobra.Command{
        Use:   "migrate",
        Short: "Create any missing tables",
        Args:  cobra.NoArgs,
        RunE: func(cmd *cobra.Command, args []string) error {
            ctx := cmd.Context()
            db, err := database.Open(ctx, config.Load())
            if err != nil {
                return err
            }
            defer db.Close()
            if err := database.Migrate(ctx, db); err != nil {
                return err
            }
            fmt.Printf("Applied %d statements\n", len(database.Statements()))
            return nil
        },
    }
}

func tokenCommand() *cobra.Command {
    var role string
    var ttl time.Duration
    cmd := &cobra.Command{
        Use:   "token [user id]",
        Short: "Mint a bearer token signed with JWT_SECRET for local testing",
        Args:  cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            userID, err := parseIDArg(args[0], "user id")
            if err != nil {
                return err
            }
            if !model.ValidRole(role) {
                return fmt.Errorf("role must be %s or %s", model.RoleAdmin, model.RoleUser)
            }
            secret := os.Getenv("JWT_SECRET")
            if secret == "" {
                return fmt.Errorf("JWT_SECRET is not set")
            }
            tok, err := utils.NewAccessToken(secret, userID, role, ttl)
            if err != nil {
                return err
            }
            fmt.Println(tok.Token)
            return nil
        },
    }
    cmd.Flags().StringVar(&role, "role", model.RoleAdmin, "role claim (admin or user)")
    cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "token lifetime")
    return cmd
}

func accessCommand() *cobra.Command {
    return &cobra.Command{
        Use:   "access [user id] [course id]",
        Short: "Explain whether a user can open a course",
        Args:  cobra.ExactArgs(2),
        RunE: func(cmd *cobra.Command, args []string) error {
            userID, err := parseIDArg(args[0], "user id")
            if err != nil {
                return err
            }
            courseID, err := parseIDArg(args[1], "course id")
            if err != nil {
                return err
            }
            ctx := cmd.Context()
            e, err := open(ctx)
            if err != nil {
                return err
            }
            defer e.close()
            d, err := e.resolver.Resolve(ctx, userID, courseID)
            if err != nil {
                return err
            }
            return printJSON(d)
        },
    }
}

func grantCommand() *cobra.Command {
    var accessType, expires string
    cmd := &cobra.Command{
        Use:   "grant [user id] [course id]",
        Short: "Grant a user explicit access to a course, replacing any earlier grant",
        Args:  cobra.ExactArgs(2),
        RunE: func(cmd *cobra.Command, args []string) error {
            userID, err := parseIDArg(args[0], "user id")
            if err != nil {
                return err
            }
            courseID, err := parseIDArg(args[1], "course id")
            if err != nil {
                return err
            }
            ctx := cmd.Context()
            e, err := open(ctx)
            if err != nil {
                return err
            }
            defer e.close()
            rec, err := e.resolver.Grant(ctx, userID, entitlement.GrantInput{
                CourseID:   courseID,
                AccessType: accessType,
                ExpiryDate: expires,
            })
            if err != nil {
                return err
            }
            return printJSON(rec)
        },
    }
    cmd.Flags().StringVar(&accessType, "type", model.AccessGranted, "granted, purchased or trial")
    cmd.Flags().StringVar(&expires, "expires", "", "expiry as YYYY-MM-DD or RFC 3339; empty never expires")
    return cmd
}

func revokeCommand() *cobra.Command {
    return &cobra.Command{
        Use:   "revoke [user id] [course id]",
        Short: "Remove a user's explicit grant for a course",
        Args:  cobra.ExactArgs(2),
        RunE: func(cmd *cobra.Command, args []string) error {
            userID, err := parseIDArg(args[0], "user id")
            if err != nil {
                return err
            }
            courseID, err := parseIDArg(args[1], "course id")
            if err != nil {
                return err
            }
            ctx := cmd.Context()
            e, err := open(ctx)
            if err != nil {
                return err
            }
            defer e.close()
            removed, err := e.resolver.Revoke(ctx, userID, courseID)
            if err != nil {
                return err
            }
            if !removed {
                fmt.Printf("User %d had no grant for course %d\n", userID, courseID)
                return nil
            }
            fmt.Printf("Revoked course %d for user %d\n", courseID, userID)
            return nil
        },
    }
}

func userCommand() *cobra.Command {
    var role, tier string
    cmd := &cobra.Command{
        Use:   "user [user id]",
        Short: "Show a user, or change their role and subscription tier",
        Args:  cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            userID, err := parseIDArg(args[0], "user id")
            if err != nil {
                return err
            }
            ctx := cmd.Context()
            e, err := open(ctx)
            if err != nil {
                return err
            }
            defer e.close()

            var patch entitlement.ProfilePatch
            if cmd.Flags().Changed("role") {
                patch.Role = &role
            }
            if cmd.Flags().Changed("tier") {
                patch.SubscriptionStatus = &tier
            }
            var u *model.User
            if patch.Role == nil && patch.SubscriptionStatus == nil {
                u, err = e.users.Get(ctx, userID)
            } else {
                u, err = e.users.Update(ctx, userID, patch)
            }
            if err != nil {
                return err
            }
            return printJSON(u)
        },
    }
    cmd.Flags().StringVar(&role, "role", "", "new role (admin or user)")
    cmd.Flags().StringVar(&tier, "tier", "", "new subscription tier (free, premium, vip)")
    return cmd
}
