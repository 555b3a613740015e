package localtable

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/localtable/markdown"
)

type postsResponse struct {
	Posts []BlogPost `json:"posts"`
	Tags  []string   `json:"tags"`
}

type postResponse struct {
	Post     BlogPost           `json:"post"`
	Blocks   []markdown.Block   `json:"blocks"`
	Headings []markdown.Heading `json:"headings"`
}

func (a *App) handleAPIPosts(c echo.Context) error {
	ctx := c.Request().Context()
	posts, err := a.Cache.SearchPosts(ctx, c.QueryParam("tag"), strings.TrimSpace(c.QueryParam("q")))
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags(ctx)
	if err != nil {
		return err
	}
	// Listings omit bodies.
	list := make([]BlogPost, len(posts))
	for i, p := range posts {
		p.Content = ""
		list[i] = p
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(http.StatusOK, postsResponse{Posts: list, Tags: tags})
}

func (a *App) handleAPIPost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apiError(c, http.StatusNotFound, "Post not found", "")
		}
		return err
	}
	doc := markdown.Parse(post.Content)
	blocks, headings := doc.Blocks, doc.Headings
	if blocks == nil {
		blocks = []markdown.Block{}
	}
	if headings == nil {
		headings = []markdown.Heading{}
	}
	return c.JSON(http.StatusOK, postResponse{Post: post, Blocks: blocks, Headings: headings})
}
