package pypi

import (
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
)

// rssFeed mirrors the subset of the PyPI RSS schema we read.
type rssFeed struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title string `xml:"title"`
	Link  string `xml:"link"`
}

// RecentProjects returns the deduplicated union of project page links from
// the site-wide "updates" and "newest packages" feeds, sorted for
// deterministic batch order.
//
// A fetch or parse failure of one feed contributes nothing from that feed;
// the error is returned only if both feeds fail.
func (c *Client) RecentProjects(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var firstErr error

	for _, feed := range []string{"updates.xml", "packages.xml"} {
		links, err := c.feedLinks(ctx, fmt.Sprintf("%s/%s", c.feedURL, feed))
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("fetch feed %s: %w", feed, err)
			}
			continue
		}
		for _, link := range links {
			seen[link] = true
		}
	}

	if len(seen) == 0 && firstErr != nil {
		return nil, firstErr
	}

	projects := make([]string, 0, len(seen))
	for link := range seen {
		projects = append(projects, link)
	}
	sort.Strings(projects)
	return projects, nil
}

func (c *Client) feedLinks(ctx context.Context, url string) ([]string, error) {
	body, err := c.GetText(ctx, url)
	if err != nil {
		return nil, err
	}

	var feed rssFeed
	if err := xml.Unmarshal([]byte(body), &feed); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	links := make([]string, 0, len(feed.Channel.Items))
	for _, item := range feed.Channel.Items {
		if link := projectLink(item.Link); link != "" {
			links = append(links, link)
		}
	}
	return links, nil
}

// projectLink normalizes a feed item link to its project page.
// Update-feed links carry a version segment (/project/<name>/<version>/)
// which is stripped so both feeds yield the same link for one project.
func projectLink(link string) string {
	link = strings.TrimSuffix(strings.TrimSpace(link), "/")
	if link == "" {
		return ""
	}
	parts := strings.Split(link, "/")
	for i, part := range parts {
		if part == "project" && i+1 < len(parts) {
			return strings.Join(parts[:i+2], "/") + "/"
		}
	}
	return link + "/"
}

// ProjectNameFromURL extracts the package name from a PyPI project page URL
// (https://pypi.org/project/<name>/). Returns "" if the URL has no project
// segment.
func ProjectNameFromURL(url string) string {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	for i, part := range parts {
		if part == "project" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
