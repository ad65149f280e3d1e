package render

import (
	"encoding/json"
	"time"

	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/errors"
	"github.com/masonworks/cardgrid/pkg/layout"
)

// sceneJSON is the wire form of a Scene. It flattens the layout types
// into a stable schema so cached documents survive internal refactors.
type sceneJSON struct {
	Title      string           `json:"title,omitempty"`
	Mode       string           `json:"mode"`
	Width      float64          `json:"width"`
	Seed       uint64           `json:"seed,omitempty"`
	Columns    int              `json:"columns,omitempty"`
	Gap        float64          `json:"gap,omitempty"`
	Height     float64          `json:"height,omitempty"`
	Positioned bool             `json:"positioned,omitempty"`
	Page       int              `json:"page,omitempty"`
	Pages      int              `json:"pages,omitempty"`
	Next       string           `json:"next,omitempty"`
	Cards      []card.Card      `json:"cards"`
	Frames     []frameJSON      `json:"frames,omitempty"`
	States     []stateJSON      `json:"states,omitempty"`
	Entering   map[string]int64 `json:"entering_ms,omitempty"`
}

type frameJSON struct {
	ID      string  `json:"id"`
	Column  int     `json:"column"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	DelayMS int64   `json:"delay_ms,omitempty"`
}

type stateJSON struct {
	ID       string  `json:"id"`
	Rotation float64 `json:"rotation"`
	DX       float64 `json:"dx"`
	DY       float64 `json:"dy"`
	Z        int     `json:"z"`
}

// RenderJSON serializes the scene: positions, transforms, mode, seed,
// and the pagination trail. This is the debug endpoint's payload and
// the cacheable form of a computed layout; [DecodeScene] restores it.
func RenderJSON(s Scene) ([]byte, error) {
	out := sceneJSON{
		Title:      s.Title,
		Mode:       s.Mode,
		Width:      s.Width,
		Seed:       s.Seed,
		Columns:    s.Result.Columns,
		Gap:        s.Result.Gap,
		Height:     s.Result.ContainerHeight,
		Positioned: s.Result.Positioned,
		Page:       s.Page,
		Pages:      s.Pages,
		Next:       s.NextURL,
		Cards:      s.Cards,
	}
	if out.Mode == "" {
		out.Mode = "masonry"
	}

	for _, f := range s.Result.Frames {
		out.Frames = append(out.Frames, frameJSON{
			ID:      f.CardID,
			Column:  f.Column,
			X:       f.X,
			Y:       f.Y,
			Width:   f.Width,
			Height:  f.Height,
			DelayMS: f.Delay.Milliseconds(),
		})
	}
	for _, st := range s.States {
		out.States = append(out.States, stateJSON{
			ID:       st.CardID,
			Rotation: st.Rotation,
			DX:       st.DX,
			DY:       st.DY,
			Z:        st.Z,
		})
	}
	if len(s.Entering) > 0 {
		out.Entering = make(map[string]int64, len(s.Entering))
		for id, d := range s.Entering {
			out.Entering[id] = d.Milliseconds()
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode scene")
	}
	return data, nil
}

// DecodeScene restores a scene serialized by [RenderJSON].
func DecodeScene(data []byte) (Scene, error) {
	var in sceneJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return Scene{}, errors.Wrap(errors.ErrCodeBadPayload, err, "decode scene")
	}

	s := Scene{
		Title: in.Title,
		Mode:  in.Mode,
		Width: in.Width,
		Seed:  in.Seed,
		Cards: in.Cards,
		Result: layout.Result{
			Columns:         in.Columns,
			Gap:             in.Gap,
			ContainerHeight: in.Height,
			Positioned:      in.Positioned,
		},
		Page:    in.Page,
		Pages:   in.Pages,
		NextURL: in.Next,
	}

	for _, f := range in.Frames {
		s.Result.Frames = append(s.Result.Frames, layout.Frame{
			CardID: f.ID,
			Column: f.Column,
			X:      f.X,
			Y:      f.Y,
			Width:  f.Width,
			Height: f.Height,
			Delay:  time.Duration(f.DelayMS) * time.Millisecond,
		})
	}
	for _, st := range in.States {
		s.States = append(s.States, layout.CardState{
			Placement: layout.Placement{
				CardID:   st.ID,
				Rotation: st.Rotation,
				DX:       st.DX,
				DY:       st.DY,
				Z:        st.Z,
			},
			Scale: 1,
		})
	}
	if len(in.Entering) > 0 {
		s.Entering = make(map[string]time.Duration, len(in.Entering))
		for id, ms := range in.Entering {
			s.Entering[id] = time.Duration(ms) * time.Millisecond
		}
	}
	return s, nil
}
