// Package design describes the architecture as a C4 model, rendered with the
// mdl tool from goa.design/model.
package design

import . "goa.design/model/dsl"

var _ = Design("todotrack", "Personal task tracker", func() {
	var System = SoftwareSystem("todotrack", "Tracks personal tasks with priorities and due dates", func() {
		Container("REST Server", "Task query and mutation service", "Go", func() {
			Tag("service")
		})

		Container("Audit Indexer", "Consumes task events into the audit index", "Go", func() {
			Tag("service")
		})

		Container("PostgreSQL", "Primary task store", "PostgreSQL", func() {
			Tag("database")
		})

		Container("Memcached", "Cache-aside store for single-record reads", "Memcached", func() {
			Tag("database")
		})

		Container("Kafka", "Task lifecycle event broker", "Kafka", func() {
			Tag("broker")
		})

		Container("Elasticsearch", "Audit index of task events", "Elasticsearch", func() {
			Tag("database")
		})
	})

	Person("User", "Owner of the task list", func() {
		Uses(System, "Creates, lists, updates and deletes tasks", "JSON/HTTP")
	})

	Views(func() {
		SystemContextView(System, "context", "System context", func() {
			AddAll()
			AutoLayout(RankLeftRight)
		})

		ContainerView(System, "containers", "Containers", func() {
			AddAll()
			AutoLayout(RankLeftRight)
		})

		Styles(func() {
			ElementStyle("database", func() {
				Shape(ShapeCylinder)
			})
		})
	})
})
