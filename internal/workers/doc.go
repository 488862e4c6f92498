/*
Package workers sizes the extraction worker pool for containerized
environments.

Go 1.19+ sets GOMAXPROCS from the container CPU limit, while
runtime.NumCPU() still reports the host's core count. Sizing a pool from
NumCPU on a 64-core node with a 2-CPU limit means 62 workers fighting over
2 cores, so everything here derives from runtime.GOMAXPROCS(0) instead.

Thumbnail generation is a mixed workload (read the asset, decode a frame,
resize, write the cache entry), so the service uses ForMixed. ForCPU and
ForIO cover the pure cases:

	workers.ForCPU(8)   // 1 worker per CPU, capped at 8
	workers.ForIO(16)   // 2 workers per CPU, capped at 16
	workers.ForMixed(8) // 1.5 workers per CPU, capped at 8

All functions honor the THUMBNAIL_WORKERS environment variable as an
operator override.
*/
package workers
