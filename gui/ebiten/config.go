package ebiten

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/jetsetilly/amichip/resources"
)

const geometryResource = "window"

func onWindowOpen() (windowGeometry, error) {
	var geom windowGeometry

	data, err := resources.Read(geometryResource)
	if err != nil {
		return geom, err
	}

	// no geometry has been saved yet
	if len(data) == 0 {
		return geom, nil
	}

	_, err = fmt.Sscanf(string(data), "%d %d %d %d", &geom.x, &geom.y, &geom.w, &geom.h)
	if err != nil {
		return geom, fmt.Errorf("%s: %w", geometryResource, err)
	}

	if geom.valid() {
		ebiten.SetWindowPosition(geom.x, geom.y)
		ebiten.SetWindowSize(geom.w, geom.h)
	}

	return geom, nil
}

func onWindowClose(geom windowGeometry) error {
	if !geom.valid() {
		return nil
	}
	s := fmt.Sprintf("%d %d %d %d", geom.x, geom.y, geom.w, geom.h)
	return resources.Write(geometryResource, []byte(s))
}
