// Command multilogin es el CLI de administración: opera los bloques y
// módulos vía la API /admin y emite tokens de admin localmente.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/multilogin/internal/config"
	admindto "github.com/dropDatabas3/multilogin/internal/http/dto/admin"
	"github.com/dropDatabas3/multilogin/internal/security/admintoken"
	"github.com/dropDatabas3/multilogin/internal/store"

	_ "github.com/dropDatabas3/multilogin/internal/store/adapters/all"
)

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	cl := &client{
		BaseURL:   envOr("MULTILOGIN_ADMIN_URL", "http://localhost:8080"),
		Token:     envOr("MULTILOGIN_ADMIN_TOKEN", ""),
		OutFormat: envOr("MULTILOGIN_OUT", "text"),
		HTTP:      &http.Client{Timeout: 30 * time.Second},
		Out:       out,
	}
	var configPath string

	root := &cobra.Command{
		Use:           "multilogin",
		Short:         "CLI admin para el bloque Multi Login",
		SilenceUsage:  true,
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&cl.BaseURL, "admin-url", cl.BaseURL, "URL base del servicio (env MULTILOGIN_ADMIN_URL)")
	root.PersistentFlags().StringVar(&cl.Token, "token", cl.Token, "bearer token de admin (env MULTILOGIN_ADMIN_TOKEN)")
	root.PersistentFlags().StringVar(&cl.OutFormat, "out", cl.OutFormat, "formato de salida: json|text")
	root.PersistentFlags().StringVar(&configPath, "config", envOr("MULTILOGIN_CONFIG", ""), "config.yaml para comandos locales (token, migrate)")

	root.AddCommand(
		blocksCmd(cl),
		providersCmd(cl),
		moduleCmd(cl),
		tokenCmd(out, &configPath),
		migrateCmd(out, &configPath),
	)
	return root
}

// ─── blocks ───

func blocksCmd(cl *client) *cobra.Command {
	cmd := &cobra.Command{Use: "blocks", Short: "Bloques colocados"}

	list := &cobra.Command{
		Use:   "list",
		Short: "Lista los bloques",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := cl.call(cmd.Context(), http.MethodGet, "/admin/blocks", nil)
			if err != nil {
				return err
			}
			if cl.OutFormat == "json" {
				cl.print(b)
				return nil
			}
			var resp admindto.ListBlocksResponse
			if err := json.Unmarshal(b, &resp); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cl.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tREGION\tWEIGHT\tSTANDARD\tPROVIDERS")
			for _, blk := range resp.Blocks {
				enabled := 0
				for _, ps := range blk.Settings.ProviderSettings {
					if ps.Enabled {
						enabled++
					}
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%d\n", blk.ID, blk.Region, blk.Weight, blk.Settings.StandardLoginEnabled, enabled)
			}
			return tw.Flush()
		},
	}

	var region string
	var weight int
	place := &cobra.Command{
		Use:   "place",
		Short: "Coloca un bloque nuevo en una región",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := cl.call(cmd.Context(), http.MethodPost, "/admin/blocks",
				admindto.PlaceBlockRequest{Region: region, Weight: weight})
			if err != nil {
				return err
			}
			cl.print(b)
			return nil
		},
	}
	place.Flags().StringVar(&region, "region", "sidebar_first", "región del layout")
	place.Flags().IntVar(&weight, "weight", 0, "peso dentro de la región")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Muestra un bloque",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := cl.call(cmd.Context(), http.MethodGet, "/admin/blocks/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			cl.print(b)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Elimina un bloque",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := cl.call(cmd.Context(), http.MethodDelete, "/admin/blocks/"+url.PathEscape(args[0]), nil)
			if err != nil {
				return err
			}
			cl.print(b)
			return nil
		},
	}

	var file string
	configure := &cobra.Command{
		Use:   "configure <id>",
		Short: "Envía el formulario de configuración (JSON) de un bloque",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw []byte
			var err error
			if file == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}
			var payload json.RawMessage = raw
			b, err := cl.call(cmd.Context(), http.MethodPost, "/admin/blocks/"+url.PathEscape(args[0])+"/form", payload)
			if err != nil {
				return err
			}
			cl.print(b)
			return nil
		},
	}
	configure.Flags().StringVarP(&file, "file", "f", "-", "archivo JSON con el formulario (- = stdin)")

	cmd.AddCommand(list, place, get, del, configure)
	return cmd
}

// ─── providers / modules ───

func providersCmd(cl *client) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Lista el catálogo de providers y su estado",
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := cl.call(cmd.Context(), http.MethodGet, "/admin/providers", nil)
			if err != nil {
				return err
			}
			if cl.OutFormat == "json" {
				cl.print(b)
				return nil
			}
			var resp admindto.ProvidersResponse
			if err := json.Unmarshal(b, &resp); err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cl.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tNETWORK\tINSTALLED\tREDIRECT")
			for _, p := range resp.Providers {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%t\n", p.ID, p.DisplayName, p.Network, p.Installed, p.Redirect)
			}
			return tw.Flush()
		},
	}
}

func moduleCmd(cl *client) *cobra.Command {
	cmd := &cobra.Command{Use: "module", Short: "Habilita o deshabilita módulos de provider"}
	toggle := func(use, short, method string) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <provider_id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				b, err := cl.call(cmd.Context(), method, "/admin/modules/"+url.PathEscape(args[0]), nil)
				if err != nil {
					return err
				}
				if cl.OutFormat == "json" {
					cl.print(b)
					return nil
				}
				var resp admindto.ModuleResponse
				if err := json.Unmarshal(b, &resp); err != nil {
					return err
				}
				fmt.Fprintf(cl.Out, "%s enabled=%t\ninstalled: %s\n", resp.ID, resp.Enabled, strings.Join(resp.Modules, ", "))
				return nil
			},
		}
	}
	cmd.AddCommand(
		toggle("enable", "Habilita un módulo", http.MethodPut),
		toggle("disable", "Deshabilita un módulo", http.MethodDelete),
	)
	return cmd
}

// ─── comandos locales ───

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func tokenCmd(out io.Writer, configPath *string) *cobra.Command {
	cmd := &cobra.Command{Use: "token", Short: "Tokens de admin"}

	var sub string
	var ttl time.Duration
	var roles []string
	issue := &cobra.Command{
		Use:   "issue",
		Short: "Emite un bearer token firmado con admin.jwt_secret",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Admin.TokenTTL
			}
			iss, err := admintoken.NewIssuer(cfg.Admin.JWTSecret, cfg.Admin.Issuer, ttl)
			if err != nil {
				return err
			}
			tok, exp, err := iss.Issue(sub, roles...)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, tok)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.Format(time.RFC3339))
			return nil
		},
	}
	issue.Flags().StringVar(&sub, "sub", "cli", "subject del token")
	issue.Flags().DurationVar(&ttl, "ttl", 0, "vigencia (default admin.token_ttl)")
	issue.Flags().StringSliceVar(&roles, "role", []string{admintoken.RoleAdmin}, "roles a incluir")

	cmd.AddCommand(issue)
	return cmd
}

func migrateCmd(out io.Writer, configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Abre el storage configurado y aplica migraciones pendientes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			conn, err := store.OpenAdapter(ctx, store.AdapterConfig{
				Name:   cfg.Storage.Driver,
				DSN:    cfg.Storage.DSN,
				FSRoot: cfg.Storage.FSRoot,
			})
			if err != nil {
				return err
			}
			defer conn.Close()
			fmt.Fprintf(out, "storage %s up to date\n", conn.Name())
			return nil
		},
	}
}
