package gateway

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/FBK-Manuel/wearehfg/internal/domain"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)

// YouTubeID extracts the video id from a youtu.be short link or a
// youtube.com watch URL. It returns "" for anything else.
func YouTubeID(link string) string {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	var id string
	switch {
	case host == "youtu.be":
		id = strings.Trim(u.Path, "/")
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		id = u.Query().Get("v")
	}
	if !videoIDPattern.MatchString(id) {
		return ""
	}
	return id
}

// HeroVideo reads the home page video. A status other than 200, a missing
// link or one that is not a YouTube URL is an AppError.
func (g *Gateway) HeroVideo(ctx context.Context) Result[domain.Video] {
	const endpoint = "hero_video"
	env, err := g.Authenticated.get(ctx, policyQuery, endpoint, "/videoUpload.php", nil)
	if err != nil {
		return Fail[domain.Video](err)
	}
	if int(env.Status) != http.StatusOK || env.Link == "" {
		return Fail[domain.Video](env.appError(endpoint, int(env.Status)))
	}
	id := YouTubeID(env.Link)
	if id == "" {
		return Fail[domain.Video](&AppError{Endpoint: endpoint, Status: int(env.Status), Message: "Invalid video link"})
	}
	return OK(domain.Video{Link: env.Link, VideoID: id})
}
