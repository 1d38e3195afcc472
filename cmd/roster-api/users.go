package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/MarcoPoloResearchLab/roster/internal/auth"
	"github.com/MarcoPoloResearchLab/roster/internal/forms"
	"github.com/MarcoPoloResearchLab/roster/internal/logging"
	"github.com/MarcoPoloResearchLab/roster/internal/notify"
	"github.com/MarcoPoloResearchLab/roster/internal/projection"
	"github.com/MarcoPoloResearchLab/roster/internal/roster"
	"github.com/MarcoPoloResearchLab/roster/internal/users"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const clientRequestTimeout = 10 * time.Second

type draftFlags struct {
	name  string
	age   int
	email string
	phone int
}

func (f draftFlags) draft() forms.Draft {
	return forms.Draft{Name: f.name, Age: f.age, Email: f.email, Phone: f.phone}
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "User name")
	cmd.Flags().IntVar(&f.age, "age", 0, "User age")
	cmd.Flags().StringVar(&f.email, "email", "", "User email")
	cmd.Flags().IntVar(&f.phone, "phone", 0, "User phone (0 for none)")
}

// applyChanged copies only the flags set on the command line into the form.
func (f draftFlags) applyChanged(cmd *cobra.Command, form *forms.EditForm) error {
	values := map[string]string{
		forms.FieldName:  f.name,
		forms.FieldAge:   strconv.Itoa(f.age),
		forms.FieldEmail: f.email,
		forms.FieldPhone: strconv.Itoa(f.phone),
	}
	for _, field := range []string{forms.FieldName, forms.FieldAge, forms.FieldEmail, forms.FieldPhone} {
		if !cmd.Flags().Changed(field) {
			continue
		}
		if err := form.SetField(field, values[field]); err != nil {
			return err
		}
	}
	return nil
}

func newUsersCommand() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user records through a running roster API",
	}
	usersCmd.PersistentFlags().String("identifier", "", "Login identifier")
	usersCmd.PersistentFlags().String("secret", "", "Login secret")
	for key, flag := range map[string]string{"client.identifier": "identifier", "client.secret": "secret"} {
		if err := viper.BindPFlag(key, usersCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List user records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openClientCore(cmd.Context())
			if err != nil {
				return err
			}
			printView(cmd.OutOrStdout(), core.View())
			return nil
		},
	}

	var addFlags draftFlags
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create a user record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openClientCore(cmd.Context())
			if err != nil {
				return err
			}
			if _, err := core.CreateUser(cmd.Context(), addFlags.draft()); err != nil {
				return err
			}
			printNotifications(cmd.OutOrStdout(), core.Notifications())
			printView(cmd.OutOrStdout(), core.View())
			return nil
		},
	}
	addFlags.register(addCmd)

	var editFlags draftFlags
	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the given fields of a user record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openClientCore(cmd.Context())
			if err != nil {
				return err
			}
			form, err := core.OpenEditForm(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := editFlags.applyChanged(cmd, form); err != nil {
				return err
			}
			if err := form.Submit(cmd.Context()); err != nil {
				return err
			}
			printNotifications(cmd.OutOrStdout(), core.Notifications())
			printView(cmd.OutOrStdout(), core.View())
			return nil
		},
	}
	editFlags.register(editCmd)

	usersCmd.AddCommand(listCmd, addCmd, editCmd)
	return usersCmd
}

// openClientCore logs in against the API and loads the list.
func openClientCore(ctx context.Context) (*roster.Core, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := logging.NewLogger(viper.GetString("log.level"), viper.GetString("log.format"))
	if err != nil {
		return nil, err
	}
	baseURL := viper.GetString("client.base_url")
	httpClient := &http.Client{Timeout: clientRequestTimeout}

	checker, err := auth.NewRemoteChecker(baseURL, httpClient)
	if err != nil {
		return nil, err
	}
	gate, err := auth.NewGate(auth.GateConfig{Checker: checker, Logger: logger})
	if err != nil {
		return nil, err
	}
	store, err := users.NewRemoteStore(users.RemoteStoreConfig{
		BaseURL:     baseURL,
		HTTPClient:  httpClient,
		TokenSource: func() string { return gate.Session().Token() },
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	core, err := roster.New(roster.Config{
		Store:  store,
		Gate:   gate,
		Feed:   notify.NewFeed(notify.FeedConfig{Logger: logger}),
		Logger: logger,
	})
	if err != nil {
		return nil, err
	}
	if _, err := core.Authenticate(ctx, viper.GetString("client.identifier"), viper.GetString("client.secret")); err != nil {
		return nil, err
	}
	return core, nil
}

func printView(out io.Writer, view projection.View) {
	if view.Empty {
		fmt.Fprintln(out, view.EmptyMessage)
		return
	}
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tAGE\tCATEGORY\tEMAIL\tPHONE")
	for _, record := range view.Records {
		phone := "-"
		if record.HasPhone() {
			phone = strconv.Itoa(record.Phone)
		}
		fmt.Fprintf(writer, "%s\t%s\t%d\t%s\t%s\t%s\n", record.ID, record.Name, record.Age, record.AgeCategory, record.Email, phone)
	}
	_ = writer.Flush()
	fmt.Fprintf(out, "total: %d, new: %d\n", view.Total, view.NewCount)
}

func printNotifications(out io.Writer, events []notify.Event) {
	for _, event := range events {
		fmt.Fprintf(out, "[%s] %s\n", event.Kind, event.Message)
	}
}
