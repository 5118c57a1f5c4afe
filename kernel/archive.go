package kernel

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// DefaultArchiveURL is the public generic-kernels archive.
const DefaultArchiveURL = "https://naif.jpl.nasa.gov/pub/naif/generic_kernels"

// Archive fetches kernel files from the remote archive into a local
// directory, mirroring the archive's directory layout.
type Archive struct {
	BaseURL string
	Dir     string
	Client  *http.Client
}

// NewArchive builds an archive client over a local kernel directory. A nil
// httpClient falls back to http.DefaultClient.
func NewArchive(baseURL, dir string, httpClient *http.Client) *Archive {
	if baseURL == "" {
		baseURL = DefaultArchiveURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Archive{BaseURL: baseURL, Dir: dir, Client: httpClient}
}

// LocalPath returns where an entry's file lives (or would live) on disk.
func (a *Archive) LocalPath(e Entry) string {
	return filepath.Join(a.Dir, filepath.FromSlash(e.ArchiveDir), e.File)
}

// Fetch downloads an entry's file unless it is already present. With force
// set the file is re-downloaded unconditionally. It returns the local path.
func (a *Archive) Fetch(ctx context.Context, e Entry, force bool) (string, error) {
	path := a.LocalPath(e)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	remote := a.BaseURL + "/" + e.ArchiveDir + "/" + e.File
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remote, nil)
	if err != nil {
		return "", err
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", e.File, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: archive returned %s", e.File, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	// Download to a temp name so a partial transfer never masquerades as a
	// complete kernel.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+e.File+".*")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("fetch %s: %w", e.File, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

// Remove deletes an entry's local file if present.
func (a *Archive) Remove(e Entry) error {
	err := os.Remove(a.LocalPath(e))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// LatestFilename lists the archive directory of an entry and returns the
// lexically greatest file name matching the entry's latest pattern. Archive
// editions embed dates in their names, so lexical order is release order.
func (a *Archive) LatestFilename(ctx context.Context, e Entry) (string, error) {
	if e.LatestPattern == nil {
		return e.File, nil
	}
	names, err := a.listDir(ctx, e.ArchiveDir)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, name := range names {
		if e.LatestPattern.MatchString(name) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("archive %s: no file matches %s", e.ArchiveDir, e.LatestPattern)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(matches)))
	return matches[0], nil
}

// listDir scrapes the anchor names out of an archive directory index page.
func (a *Archive) listDir(ctx context.Context, dir string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.BaseURL+"/"+dir+"/", nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list %s: archive returned %s", dir, resp.Status)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var names []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key != "href" {
					continue
				}
				if name := anchorFilename(attr.Val); name != "" {
					names = append(names, name)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return names, nil
}

var anchorQueryRe = regexp.MustCompile(`[?#].*$`)

func anchorFilename(href string) string {
	href = anchorQueryRe.ReplaceAllString(href, "")
	if href == "" || strings.HasSuffix(href, "/") {
		return ""
	}
	unescaped, err := url.PathUnescape(href)
	if err != nil {
		unescaped = href
	}
	if i := strings.LastIndex(unescaped, "/"); i >= 0 {
		unescaped = unescaped[i+1:]
	}
	return unescaped
}
