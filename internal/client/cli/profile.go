package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/netx"
	"github.com/dmitrijs2005/gophauth/internal/rpc"
)

// Seams for file access and the storage upload.
var (
	readFile     = os.ReadFile
	uploadAvatar = netx.UploadToPresignedURL
)

// Me prints the logged-in user's profile.
func (a *App) Me(ctx context.Context) error {
	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	p, err := a.api.Me(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	printProfile(a.out, p)
	return nil
}

// UpdateProfile prompts for a full name and bio. Empty answers keep the
// stored values.
func (a *App) UpdateProfile(ctx context.Context) error {
	fullName, err := getOptionalText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	bio, err := getOptionalText(a.reader, "Bio", a.out)
	if err != nil {
		return err
	}
	if fullName == nil && bio == nil {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	p, err := a.api.UpdateProfile(ctx, fullName, bio)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	printProfile(a.out, p)
	return nil
}

// Avatar asks for an image path, requests an upload URL and PUTs the file
// to object storage. An empty path only prints the URL.
func (a *App) Avatar(ctx context.Context) error {
	path, err := getSimpleText(a.reader, "Path to image (empty to print the upload URL)", a.out)
	if err != nil {
		return err
	}

	var data []byte
	if path != "" {
		if data, err = readFile(path); err != nil {
			fmt.Fprintf(a.out, "error: %v\n", err)
			return err
		}
	}

	ctx, cancel := a.callCtx(ctx)
	defer cancel()

	up, err := a.api.RequestAvatarUpload(ctx)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}

	if data == nil {
		fmt.Fprintf(a.out, "Upload your image with an HTTP PUT to:\n%s\n", up.UploadURL)
		return nil
	}

	if err := uploadAvatar(ctx, up.UploadURL, data); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return err
	}
	fmt.Fprintln(a.out, "Avatar uploaded")
	return nil
}

func printProfile(w io.Writer, p *rpc.ProfileResponse) {
	fmt.Fprintf(w, "ID:        %s\n", p.UserID)
	fmt.Fprintf(w, "Username:  %s\n", p.Username)
	fmt.Fprintf(w, "Email:     %s\n", p.Email)
	if p.FullName != nil {
		fmt.Fprintf(w, "Full name: %s\n", *p.FullName)
	}
	if p.Bio != nil {
		fmt.Fprintf(w, "Bio:       %s\n", *p.Bio)
	}
	if p.AvatarURL != "" {
		fmt.Fprintf(w, "Avatar:    %s\n", p.AvatarURL)
	}
}
