// Package detect owns detection post-processing and identity tracking.
//
// Responsibilities: confidence filtering, class-scoped non-maximum
// suppression, nearest-centroid identity association across frames, and
// pixel-domain speed estimation. The package consumes raw per-frame
// detector output and produces a de-duplicated, identity-stable stream
// suitable for display, alerting, and persistence.
//
// Dependency rule: detect computes over in-memory values only. Frame
// acquisition, model inference, and rendering live outside this package;
// persistence helpers here take an *sql.DB supplied by the caller.
package detect
