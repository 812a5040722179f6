// Package tag implements the tag commands shared by the CLI and MCP server:
// assigning tags to entities by text, removing them, and managing the tags
// themselves.
package tag

import (
	"context"
	"fmt"
	"io"

	"github.com/jpl-au/exambank/internal/store"
)

// Result contains the outcome of a tag operation.
type Result struct {
	Action string      `json:"action"`
	Kind   store.Kind  `json:"kind,omitempty"`
	ID     string      `json:"id,omitempty"`
	Tag    *store.Tag  `json:"tag,omitempty"`
	Tags   []store.Tag `json:"tags"`
}

func taggable(k store.Kind) error {
	if !k.Taggable() {
		return fmt.Errorf("%w: %s cannot be tagged", store.ErrUnknownKind, k)
	}
	return nil
}

// entityTags returns the tags currently on one entity.
func entityTags(ctx context.Context, svc store.TagStore, k store.Kind, id string) ([]store.Tag, error) {
	return svc.Tags(ctx, &store.TagFilter{Kind: k, IDs: []string{id}})
}

// Assign tags entity id of kind k with text, creating the tag if needed.
func Assign(ctx context.Context, w io.Writer, svc store.TagStore, k store.Kind, id, text string) (Result, error) {
	result := Result{Action: "assign", Kind: k, ID: id}
	if err := taggable(k); err != nil {
		return result, err
	}

	t, err := svc.GetOrCreateTag(ctx, text)
	if err != nil {
		return result, err
	}
	result.Tag = t

	ok, err := svc.AssignTag(ctx, t.ID, k, id)
	if err != nil {
		return result, err
	}
	if !ok {
		return result, fmt.Errorf("%s %s: %w", k, id, store.ErrNotFound)
	}

	if result.Tags, err = entityTags(ctx, svc, k, id); err != nil {
		return result, err
	}
	fmt.Fprintf(w, "Tagged %s %s with %q\n", k, id, text)
	return result, nil
}

// Unassign removes the tag with text from entity id of kind k.
func Unassign(ctx context.Context, w io.Writer, svc store.TagStore, k store.Kind, id, text string) (Result, error) {
	result := Result{Action: "unassign", Kind: k, ID: id}
	if err := taggable(k); err != nil {
		return result, err
	}

	t, err := svc.TagByText(ctx, text)
	if err != nil {
		return result, err
	}
	if t == nil {
		return result, fmt.Errorf("tag %q: %w", text, store.ErrNotFound)
	}
	result.Tag = t

	if _, err := svc.UnassignTag(ctx, t.ID, k, id); err != nil {
		return result, err
	}
	if result.Tags, err = entityTags(ctx, svc, k, id); err != nil {
		return result, err
	}
	fmt.Fprintf(w, "Removed %q from %s %s\n", text, k, id)
	return result, nil
}

// List writes the tags matching f, one "<id>  <text>" per line.
func List(ctx context.Context, w io.Writer, svc store.TagStore, f *store.TagFilter) (Result, error) {
	result := Result{Action: "list"}
	if f != nil {
		result.Kind = f.Kind
		if f.Kind != "" {
			if err := taggable(f.Kind); err != nil {
				return result, err
			}
		}
	}

	tags, err := svc.Tags(ctx, f)
	if err != nil {
		return result, err
	}
	result.Tags = tags
	for _, t := range tags {
		fmt.Fprintf(w, "%s  %s\n", t.ID, t.Text)
	}
	return result, nil
}

// Create returns the tag with text, creating it if absent.
func Create(ctx context.Context, w io.Writer, svc store.TagStore, text string) (Result, error) {
	result := Result{Action: "create"}
	t, err := svc.GetOrCreateTag(ctx, text)
	if err != nil {
		return result, err
	}
	result.Tag = t
	fmt.Fprintln(w, t.ID)
	return result, nil
}

// Rename changes the text of tag id. Every entity carrying the tag sees the
// new text.
func Rename(ctx context.Context, w io.Writer, svc store.TagStore, id, text string) (Result, error) {
	result := Result{Action: "rename", ID: id}
	t, err := svc.UpdateTag(ctx, id, text)
	if err != nil {
		return result, err
	}
	if t == nil {
		return result, fmt.Errorf("tag %s: %w", id, store.ErrNotFound)
	}
	result.Tag = t
	fmt.Fprintf(w, "Renamed tag %s to %q\n", id, text)
	return result, nil
}

// Delete removes tag id and all of its assignments.
func Delete(ctx context.Context, w io.Writer, svc store.TagStore, id string) (Result, error) {
	result := Result{Action: "delete", ID: id}
	ok, err := svc.DeleteTag(ctx, id)
	if err != nil {
		return result, err
	}
	if !ok {
		return result, fmt.Errorf("tag %s: %w", id, store.ErrNotFound)
	}
	fmt.Fprintf(w, "Deleted tag %s\n", id)
	return result, nil
}
