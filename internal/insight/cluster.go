package insight

import (
	"FieldOps/internal/domain"
	"FieldOps/internal/geo"
)

// Clustering thresholds.
const (
	ClusterRadiusKm = 3.2
	MinClusterSize  = 3
)

// Cluster is a group of nearby work items.
type Cluster struct {
	Members  []domain.WorkItem
	Center   geo.Point
	RadiusKm float64
}

// RadiusMiles converts RadiusKm.
func (c Cluster) RadiusMiles() float64 {
	return c.RadiusKm * domain.KmToMiles
}

// FindClusters walks items in order; each unclustered item seeds a cluster
// that absorbs every later unclustered item strictly within
// ClusterRadiusKm of the seed. Clusters smaller than MinClusterSize are
// dropped. The result is in discovery order and depends on input order.
func FindClusters(items []domain.WorkItem) []Cluster {
	var clusters []Cluster
	taken := make([]bool, len(items))

	for i := range items {
		if taken[i] {
			continue
		}
		taken[i] = true
		seed := geo.Point{Lat: items[i].Lat, Lng: items[i].Lng}
		members := []domain.WorkItem{items[i]}

		for j := i + 1; j < len(items); j++ {
			if taken[j] {
				continue
			}
			if geo.DistanceKm(seed, geo.Point{Lat: items[j].Lat, Lng: items[j].Lng}) < ClusterRadiusKm {
				members = append(members, items[j])
				taken[j] = true
			}
		}

		if len(members) >= MinClusterSize {
			clusters = append(clusters, newCluster(members))
		}
	}
	return clusters
}

func newCluster(members []domain.WorkItem) Cluster {
	var center geo.Point
	for _, m := range members {
		center.Lat += m.Lat
		center.Lng += m.Lng
	}
	center.Lat /= float64(len(members))
	center.Lng /= float64(len(members))

	var radius float64
	for _, m := range members {
		if d := geo.DistanceKm(center, geo.Point{Lat: m.Lat, Lng: m.Lng}); d > radius {
			radius = d
		}
	}
	return Cluster{Members: members, Center: center, RadiusKm: radius}
}

// Largest returns the cluster with the most members; ties go to the
// earliest discovered.
func Largest(clusters []Cluster) (Cluster, bool) {
	if len(clusters) == 0 {
		return Cluster{}, false
	}
	best := clusters[0]
	for _, c := range clusters[1:] {
		if len(c.Members) > len(best.Members) {
			best = c
		}
	}
	return best, true
}
