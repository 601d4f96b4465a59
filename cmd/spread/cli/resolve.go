// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"

	"github.com/bureau-foundation/spread/lib/schema/release"
)

var initMatcher sync.Once

// match is a candidate that matched a query, with its fzf score.
type match[T any] struct {
	item  T
	name  string
	score int
}

// resolve picks the one item a query names. An exact id wins, then a
// case-insensitive exact name, then the single best fuzzy match. A
// query whose best fuzzy score is shared by several names is ambiguous.
func resolve[T any](items []T, query, noun string, id, name func(T) string) (T, error) {
	var zero T
	query = strings.TrimSpace(query)
	if query == "" {
		return zero, Validation("%s name or id is required", noun)
	}

	for _, item := range items {
		if id(item) == query {
			return item, nil
		}
	}
	for _, item := range items {
		if strings.EqualFold(name(item), query) {
			return item, nil
		}
	}

	matches := fuzzyMatches(items, query, name)
	if len(matches) == 0 {
		return zero, NotFound("no %s matches %q", noun, query)
	}
	if len(matches) > 1 && matches[0].score == matches[1].score {
		var names []string
		for _, candidate := range matches {
			if candidate.score != matches[0].score {
				break
			}
			names = append(names, candidate.name)
		}
		return zero, Validation("%s %q is ambiguous: %s", noun, query, strings.Join(names, ", "))
	}
	return matches[0].item, nil
}

// fuzzyMatches scores every item name against query with the fzf v2
// algorithm, best first. Matching is case-insensitive.
func fuzzyMatches[T any](items []T, query string, name func(T) string) []match[T] {
	initMatcher.Do(func() { algo.Init("default") })

	pattern := []rune(strings.ToLower(query))
	slab := util.MakeSlab(100*1024, 2048)

	var matches []match[T]
	for _, item := range items {
		itemName := name(item)
		chars := util.ToChars([]byte(itemName))
		result, _ := algo.FuzzyMatchV2(false, true, true, &chars, pattern, false, slab)
		if result.Start < 0 || result.Score <= 0 {
			continue
		}
		matches = append(matches, match[T]{item: item, name: itemName, score: result.Score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return len(matches[i].name) < len(matches[j].name)
	})
	return matches
}

// ResolveApp finds the app named by query among apps.
func ResolveApp(apps []release.App, query string) (release.App, error) {
	return resolve(apps, query, "app",
		func(app release.App) string { return app.ID },
		func(app release.App) string { return app.Name })
}

// ResolveEnvironment finds the environment named by query among environments.
func ResolveEnvironment(environments []release.Environment, query string) (release.Environment, error) {
	return resolve(environments, query, "environment",
		func(environment release.Environment) string { return environment.ID },
		func(environment release.Environment) string { return environment.Name })
}

// TargetParams names an application and, optionally, one of its
// environments. Both accept a name, a fuzzy fragment of a name, or an id.
type TargetParams struct {
	App         string `json:"app" flag:"app,a" desc:"application name or id"`
	Environment string `json:"environment" flag:"env,e" desc:"environment name or id"`
}

// ResolveApp refreshes the app list and picks the app query names.
func (r *Runtime) ResolveApp(ctx context.Context, query string) (release.App, error) {
	if strings.TrimSpace(query) == "" {
		return release.App{}, Validation("--app is required")
	}
	apps, err := r.Coordinator.LoadApps(ctx)
	if err != nil {
		return release.App{}, FromGateway(err)
	}
	return ResolveApp(apps, query)
}

// ResolveEnvironment refreshes the environments of app and picks the
// one query names.
func (r *Runtime) ResolveEnvironment(ctx context.Context, app release.App, query string) (release.Environment, error) {
	if strings.TrimSpace(query) == "" {
		return release.Environment{}, Validation("--env is required")
	}
	environments, err := r.Coordinator.LoadEnvironments(ctx, app.ID)
	if err != nil {
		return release.Environment{}, FromGateway(err)
	}
	return ResolveEnvironment(environments, query)
}

// ResolveTarget resolves both halves of target.
func (r *Runtime) ResolveTarget(ctx context.Context, target TargetParams) (release.App, release.Environment, error) {
	app, err := r.ResolveApp(ctx, target.App)
	if err != nil {
		return release.App{}, release.Environment{}, err
	}
	environment, err := r.ResolveEnvironment(ctx, app, target.Environment)
	if err != nil {
		return release.App{}, release.Environment{}, err
	}
	return app, environment, nil
}
