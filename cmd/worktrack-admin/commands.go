package main

import (
	"context"
	"fmt"
	"io"

	"github.com/dimitrije/worktrack-api/internal/jobs"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/rs/zerolog"
)

// UserStore is what the account commands need from the user service.
type UserStore interface {
	Create(ctx context.Context, in services.NewUser) (*models.User, error)
	SetRole(ctx context.Context, login string, role access.Role) (*models.User, error)
}

type Context struct {
	Ctx    context.Context
	Users  UserStore
	Tokens jobs.TokenStore
	Log    zerolog.Logger
	Out    io.Writer
}

type CreateUserCmd struct {
	Username   string `arg:"" help:"Login name."`
	Email      string `arg:"" help:"Email address."`
	Role       string `short:"r" default:"SuperAdmin" enum:"SuperAdmin,Admin,TeamLeader,User" help:"Role of the new account."`
	Password   string `short:"p" required:"" env:"WORKTRACK_PASSWORD" help:"Initial password."`
	FirstName  string `help:"First name."`
	LastName   string `help:"Last name."`
	Department string `help:"Department for team leaders and users."`
	Subteam    string `help:"Sub-team for users."`
}

// Run validates the account as a SuperAdmin would before inserting it, so
// the CLI cannot create records the API would reject.
func (c *CreateUserCmd) Run(ctx *Context) error {
	role, _ := access.ParseRole(c.Role)
	in := services.NewUser{
		Username:   c.Username,
		Email:      c.Email,
		FirstName:  c.FirstName,
		LastName:   c.LastName,
		Password:   c.Password,
		Role:       role,
		Department: c.Department,
		Subteam:    c.Subteam,
	}
	if err := services.ValidateNewUser(access.RoleSuperAdmin, in); err != nil {
		return err
	}

	user, err := ctx.Users.Create(ctx.Ctx, in)
	if err != nil {
		return err
	}
	ctx.Log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("user created from CLI")
	fmt.Fprintf(ctx.Out, "Created %s (%s) with id %s\n", user.Username, user.Role, user.ID)
	return nil
}

type SetRoleCmd struct {
	Login string `arg:"" help:"Username or email."`
	Role  string `arg:"" enum:"SuperAdmin,Admin,TeamLeader,User" help:"New role."`
}

func (c *SetRoleCmd) Run(ctx *Context) error {
	role, _ := access.ParseRole(c.Role)
	user, err := ctx.Users.SetRole(ctx.Ctx, c.Login, role)
	if err != nil {
		return err
	}
	ctx.Log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("role changed from CLI")
	fmt.Fprintf(ctx.Out, "%s is now %s\n", user.Username, user.Role)
	return nil
}

type CleanupCmd struct{}

func (c *CleanupCmd) Run(ctx *Context) error {
	for _, job := range jobs.CleanupJobs(ctx.Tokens) {
		n, err := job.Run(ctx.Ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", job.Name, err)
		}
		fmt.Fprintf(ctx.Out, "%s: removed %d\n", job.Name, n)
	}
	return nil
}
