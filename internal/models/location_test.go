package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistanceKm(t *testing.T) {
	berlin := Coordinates{Lat: 52.520008, Lng: 13.404954}

	t.Run("zero to itself", func(t *testing.T) {
		assert.Zero(t, berlin.DistanceKm(berlin))
	})

	t.Run("symmetric", func(t *testing.T) {
		potsdam := Coordinates{Lat: 52.390568, Lng: 13.064473}
		assert.InDelta(t, berlin.DistanceKm(potsdam), potsdam.DistanceKm(berlin), 1e-9)
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		a := Coordinates{Lat: 0, Lng: 0}
		b := Coordinates{Lat: 1, Lng: 0}
		assert.InDelta(t, 111.19, a.DistanceKm(b), 0.1)
	})

	t.Run("orders points by proximity", func(t *testing.T) {
		near := Coordinates{Lat: berlin.Lat + 0.01, Lng: berlin.Lng}
		mid := Coordinates{Lat: berlin.Lat + 0.05, Lng: berlin.Lng}
		far := Coordinates{Lat: berlin.Lat + 0.10, Lng: berlin.Lng}

		dNear := berlin.DistanceKm(near)
		dMid := berlin.DistanceKm(mid)
		dFar := berlin.DistanceKm(far)
		assert.Less(t, dNear, dMid)
		assert.Less(t, dMid, dFar)
	})
}
