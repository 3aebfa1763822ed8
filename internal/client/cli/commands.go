package cli

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/socialclone/internal/client/profilesync"
	"github.com/dmitrijs2005/socialclone/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials(withUsername bool) (profilesync.Credentials, error) {
	var c profilesync.Credentials
	var err error

	if c.Email, err = getSimpleText(a.reader, "Enter email", a.out); err != nil {
		return c, err
	}
	if withUsername {
		if c.Username, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
			return c, err
		}
	}
	if c.Password, err = getPassword(a.out); err != nil {
		return c, err
	}
	return c, nil
}

func (a *App) submit(ctx context.Context, mode profilesync.AuthMode) error {
	creds, err := a.readCredentials(mode == profilesync.ModeSignUp)
	if err != nil {
		return err
	}

	a.page.OpenPopup()
	a.page.SetAuthMode(mode)
	a.page.SetCredentials(creds)
	err = a.page.Submit(ctx)

	a.println(renderPopup(a.page.State()))
	return err
}

func (a *App) SignIn(ctx context.Context) error {
	return a.submit(ctx, profilesync.ModeSignIn)
}

func (a *App) SignUp(ctx context.Context) error {
	return a.submit(ctx, profilesync.ModeSignUp)
}

func (a *App) SignOut(ctx context.Context) error {
	err := a.page.SignOut(ctx)
	a.println(renderProfile(a.page.State()))
	return err
}

func (a *App) Profile(_ context.Context) error {
	a.println(renderProfile(a.page.State()))
	return nil
}

func (a *App) Posts(_ context.Context) error {
	a.println(renderPosts(a.page.State()))
	return nil
}

func (a *App) Reload(ctx context.Context) error {
	err := a.page.Reload(ctx)
	a.println(renderProfile(a.page.State()))
	return err
}

// Avatar replaces the profile picture with the file at path.
func (a *App) Avatar(ctx context.Context, path string) error {
	f, size, err := openFile(path)
	if err != nil {
		a.logger.Error(ctx, "opening avatar failed", "path", path, "err", err)
		a.println("avatar unchanged")
		return err
	}
	defer f.Close()

	_, err = a.page.UploadAvatar(ctx, filepath.Base(path), f, size, contentType(path))
	a.println(renderAvatar(a.page.State()))
	return err
}

// Bio handles "bio edit", "bio set <text>", "bio save" and "bio cancel".
// text is only used by "set" and is taken verbatim.
func (a *App) Bio(ctx context.Context, sub, text string) error {
	var err error
	switch sub {
	case "edit":
		err = a.page.EditBio()
	case "set":
		err = a.page.SetBioBuffer(text)
	case "save":
		err = a.page.SaveBio(ctx)
	case "cancel":
		a.page.CancelBio()
	default:
		a.println("Usage: bio edit | bio set <text> | bio save | bio cancel")
		return nil
	}
	if err != nil {
		a.logger.Error(ctx, "bio command failed", "command", sub, "err", err)
	}
	a.println(renderBio(a.page.State()))
	return err
}

// Post uploads an image under the user's prefix and publishes it as a post.
func (a *App) Post(ctx context.Context, path, caption string) error {
	st := a.page.State()
	if st.Profile == nil {
		a.println(renderProfile(st))
		return common.ErrorNoProfile
	}

	f, size, err := openFile(path)
	if err != nil {
		a.logger.Error(ctx, "opening image failed", "path", path, "err", err)
		a.println("post not published")
		return err
	}
	defer f.Close()

	key := profilesync.ObjectKey(st.Profile.ID, a.now(), filepath.Base(path))
	err = a.publish(ctx, key, f, size, contentType(path), caption)
	if err != nil {
		a.logger.Error(ctx, "publishing post failed", "key", key, "err", err)
		a.println("post not published")
		return err
	}

	if err := a.page.Reload(ctx); err != nil {
		a.logger.Error(ctx, "reloading posts failed", "err", err)
	}
	a.println(renderPosts(a.page.State()))
	return nil
}

func (a *App) publish(ctx context.Context, key string, f *os.File, size int64, ct, caption string) error {
	if err := a.publisher.Upload(ctx, common.DefaultBucket, key, f, size, ct); err != nil {
		return err
	}
	url, err := a.publisher.PublicURL(ctx, common.DefaultBucket, key)
	if err != nil {
		return err
	}
	var captionPtr *string
	if caption != "" {
		captionPtr = &caption
	}
	_, err = a.publisher.CreatePost(ctx, &url, captionPtr)
	return err
}

// Upload sends a file through the standalone multipart endpoint.
func (a *App) Upload(ctx context.Context, path string) error {
	res, err := a.uploader.Upload(ctx, path)
	if err != nil {
		a.println("upload failed")
		return err
	}
	a.println(res.URL)
	return nil
}

func (a *App) println(s string) {
	_, _ = a.out.Write([]byte(s + "\n"))
}

func openFile(path string) (*os.File, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, 0, err
	}
	return f, info.Size(), nil
}

func contentType(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
