// Package feed publishes store change batches to an out-of-process state
// owner.
//
// A [Publisher] encodes every batch the store forwards (node changes, edge
// changes, connections, selection and viewport updates) as a JSON
// [Message] and hands it to a [Sink]. [RedisSink] publishes on a Redis
// pub/sub channel; [NullSink] drops everything.
//
//	sink := feed.NewRedisSink(feed.RedisOptions{Addr: "localhost:6379"})
//	pub := feed.NewPublisher(sink, feed.Options{Source: "editor-1"})
//	defer pub.Close()
//
//	h := feed.Attach(ctx, pub, store.Handlers[MyData]{})
//	s, err := store.New[MyData](cfg, h, loop, logger)
//
// Publish failures never reach the store. They are logged, reported
// through [observability.FeedHooks] and returned from [Publisher.Err].
package feed
