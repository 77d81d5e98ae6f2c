package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/flightglobe/internal/core/domain"
	"github.com/samirrijal/flightglobe/internal/pkg/geospatial"
)

// buildSchema creates the GraphQL schema wired to our services.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat":     &graphql.Field{Type: graphql.Float},
			"lng":     &graphql.Field{Type: graphql.Float},
			"city":    &graphql.Field{Type: graphql.String},
			"airport": &graphql.Field{Type: graphql.String},
			"code":    &graphql.Field{Type: graphql.String},
		},
	})

	pointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Point3D",
		Fields: graphql.Fields{
			"x": &graphql.Field{Type: graphql.Float},
			"y": &graphql.Field{Type: graphql.Float},
			"z": &graphql.Field{Type: graphql.Float},
		},
	})

	flightType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Flight",
		Fields: graphql.Fields{
			"flightNumber": &graphql.Field{Type: graphql.String},
			"date":         &graphql.Field{Type: graphql.String},
			"source":       &graphql.Field{Type: graphql.String},
			"from":         &graphql.Field{Type: geoPointType},
			"to":           &graphql.Field{Type: geoPointType},
		},
	})

	markersType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Markers",
		Fields: graphql.Fields{
			"departure": &graphql.Field{Type: pointType},
			"arrival":   &graphql.Field{Type: pointType},
			"direction": &graphql.Field{Type: pointType},
		},
	})

	sceneType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Scene",
		Fields: graphql.Fields{
			"generation": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return int(p.Source.(domain.Frame).Generation), nil
				},
			},
			"globeRadius": &graphql.Field{
				Type: graphql.Float,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return p.Source.(domain.Frame).Globe.Radius, nil
				},
			},
			"flight":      &graphql.Field{Type: flightType},
			"arc":         &graphql.Field{Type: graphql.NewList(pointType)},
			"markers":     &graphql.Field{Type: markersType},
			"distance_km": &graphql.Field{Type: graphql.Float},
			"warnings":    &graphql.Field{Type: graphql.NewList(graphql.String)},
			"borderCount": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return len(p.Source.(domain.Frame).Borders), nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"flight": &graphql.Field{
				Type:        flightType,
				Description: "Resolve a flight number and date to its airports",
				Args: graphql.FieldConfigArgument{
					"flightNumber": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"date":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Flights.Lookup(p.Context, p.Args["flightNumber"].(string), p.Args["date"].(string))
				},
			},
			"catalog": &graphql.Field{
				Type:        graphql.NewList(graphql.String),
				Description: "Flight numbers known to the catalog",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Flights.Catalog(p.Context)
				},
			},
			"scene": &graphql.Field{
				Type:        sceneType,
				Description: "The current globe scene",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Scene.Frame(), nil
				},
			},
			"arc": &graphql.Field{
				Type:        graphql.NewList(pointType),
				Description: "Arc points between two coordinates",
				Args: graphql.FieldConfigArgument{
					"fromLat":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"fromLng":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"toLat":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"toLng":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"radius":   &graphql.ArgumentConfig{Type: graphql.Float},
					"segments": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: geospatial.DefaultSegments},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					from := domain.GeoPoint{Lat: p.Args["fromLat"].(float64), Lng: p.Args["fromLng"].(float64)}
					to := domain.GeoPoint{Lat: p.Args["toLat"].(float64), Lng: p.Args["toLng"].(float64)}
					if err := from.Validate(); err != nil {
						return nil, err
					}
					if err := to.Validate(); err != nil {
						return nil, err
					}
					radius := deps.Scene.Config().BaseRadius
					if r, ok := p.Args["radius"].(float64); ok && r > 0 {
						radius = r
					}
					segments := p.Args["segments"].(int)
					if segments > maxArcSegments {
						segments = maxArcSegments
					}
					return geospatial.GenerateArc(from, to, radius, segments), nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"selectFlight": &graphql.Field{
				Type:        sceneType,
				Description: "Show a flight on the globe; a failed lookup clears the scene",
				Args: graphql.FieldConfigArgument{
					"flightNumber": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"date":         &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					frame, err := deps.Scene.SelectFlight(p.Context, p.Args["flightNumber"].(string), p.Args["date"].(string))
					if err != nil {
						return nil, err
					}
					return frame, nil
				},
			},
			"clearFlight": &graphql.Field{
				Type:        sceneType,
				Description: "Remove the flight overlay",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Scene.ClearFlight(p.Context), nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}
